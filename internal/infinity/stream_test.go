package infinity

import "testing"

func TestParseSerialPath(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		wantDevice string
		wantBaud   int
		wantErr    bool
	}{
		{
			name:       "plain device",
			path:       "serial:/dev/ttyUSB0",
			wantDevice: "/dev/ttyUSB0",
			wantBaud:   defaultBaudRate,
		},
		{
			name:       "double slash form",
			path:       "serial:///dev/ttyUSB0",
			wantDevice: "/dev/ttyUSB0",
			wantBaud:   defaultBaudRate,
		},
		{
			name:       "explicit baud",
			path:       "serial:/dev/ttyUSB1?baud=9600",
			wantDevice: "/dev/ttyUSB1",
			wantBaud:   9600,
		},
		{
			name:    "missing device",
			path:    "serial:",
			wantErr: true,
		},
		{
			name:    "bad baud",
			path:    "serial:/dev/ttyUSB0?baud=fast",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			device, baud, err := parseSerialPath(tt.path)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("parseSerialPath() error = %v", err)
			}
			if device != tt.wantDevice {
				t.Errorf("device = %q, want %q", device, tt.wantDevice)
			}
			if baud != tt.wantBaud {
				t.Errorf("baud = %d, want %d", baud, tt.wantBaud)
			}
		})
	}
}

func TestOpenStream_UnsupportedPath(t *testing.T) {
	if _, err := OpenStream("not-a-path"); err == nil {
		t.Error("OpenStream() expected error for unsupported path")
	}
}
