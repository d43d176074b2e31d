package infinity

// crcPolynomial is the reversed CRC-16/ARC polynomial used by the ABCD bus.
const crcPolynomial = 0xA001

// Checksum computes the CRC-16/ARC checksum for the given data.
func Checksum(data []byte) uint16 {
	var crc uint16
	for _, b := range data {
		crc ^= uint16(b)
		for i := 0; i < 8; i++ {
			if crc&1 != 0 {
				crc = (crc >> 1) ^ crcPolynomial
			} else {
				crc >>= 1
			}
		}
	}
	return crc
}
