package infinity

import "testing"

func TestChecksum(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want uint16
	}{
		{
			// CRC-16/ARC check value for the standard test vector.
			name: "standard vector",
			data: []byte("123456789"),
			want: 0xBB3D,
		},
		{
			name: "empty",
			data: nil,
			want: 0x0000,
		},
		{
			name: "single zero byte",
			data: []byte{0x00},
			want: 0x0000,
		},
		{
			name: "single 0xff",
			data: []byte{0xFF},
			want: 0x4040,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Checksum(tt.data); got != tt.want {
				t.Errorf("Checksum() = 0x%04X, want 0x%04X", got, tt.want)
			}
		})
	}
}

func TestChecksum_DetectsCorruption(t *testing.T) {
	frame := Encode(0x2001, 0x4001, FuncReply, []byte{0x00, 0x03, 0x06, 0x01})
	body := frame[:len(frame)-crcSize]
	good := Checksum(body)

	body[2] ^= 0x01
	if Checksum(body) == good {
		t.Error("checksum unchanged after corrupting a byte")
	}
}
