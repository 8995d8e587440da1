package container

const (
	tsPacketSize = 188
	tsSyncByte   = 0x47

	sdtPID               = 0x11
	sdtTableID           = 0x42
	sdtTransportStream   = 1
	sdtOriginalNetwork   = 0xff01
	sdtServiceID         = 1
	serviceDescriptor    = 0x48
	serviceTypeDigitalTV = 0x01
	runningStatusRunning = 4
)

var crc32Table [256]uint32

func init() {
	for i := 0; i < 256; i++ {
		crc := uint32(i) << 24
		for j := 0; j < 8; j++ {
			if crc&0x80000000 != 0 {
				crc = (crc << 1) ^ 0x04C11DB7
			} else {
				crc <<= 1
			}
		}
		crc32Table[i] = crc
	}
}

// crc32MPEG2 computes the CRC of PSI sections.
func crc32MPEG2(data []byte) uint32 {
	crc := uint32(0xFFFFFFFF)
	for _, b := range data {
		crc = (crc << 8) ^ crc32Table[byte(crc>>24)^b]
	}
	return crc
}

// marshalSDT returns a transport stream packet carrying a Service Description Table
// with a single service.
func marshalSDT(provider string, name string) []byte {
	provider = truncate(provider, 80)
	name = truncate(name, 80)

	desc := []byte{
		serviceDescriptor,
		byte(3 + len(provider) + len(name)),
		serviceTypeDigitalTV,
		byte(len(provider)),
	}
	desc = append(desc, provider...)
	desc = append(desc, byte(len(name)))
	desc = append(desc, name...)

	// section length counts the bytes following it, CRC included
	sectionLen := 8 + 5 + len(desc) + 4

	b := make([]byte, 0, tsPacketSize)
	b = append(b,
		tsSyncByte,
		0x40|byte(sdtPID>>8), byte(sdtPID&0xff), // payload unit start
		0x10, // payload only, continuity counter 0
		0x00, // pointer field
	)

	start := len(b)
	b = append(b,
		sdtTableID,
		0xf0|byte(sectionLen>>8), byte(sectionLen),
		byte(sdtTransportStream>>8), byte(sdtTransportStream&0xff),
		0xc1, // version 0, current
		0x00, // section number
		0x00, // last section number
		byte(sdtOriginalNetwork>>8), byte(sdtOriginalNetwork&0xff),
		0xff,
		byte(sdtServiceID>>8), byte(sdtServiceID&0xff),
		0xfc, // no EIT
		runningStatusRunning<<5|byte(len(desc)>>8), byte(len(desc)),
	)
	b = append(b, desc...)

	crc := crc32MPEG2(b[start:])
	b = append(b, byte(crc>>24), byte(crc>>16), byte(crc>>8), byte(crc))

	for len(b) < tsPacketSize {
		b = append(b, 0xff)
	}

	return b
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
