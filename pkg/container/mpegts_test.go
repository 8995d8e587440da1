package container

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/asticode/go-astits"
	"github.com/stretchr/testify/require"
)

var (
	testVPS = []byte{
		0x40, 0x01, 0x0c, 0x01, 0xff, 0xff, 0x01, 0x60,
		0x00, 0x00, 0x03, 0x00, 0x90, 0x00, 0x00, 0x03,
		0x00, 0x00, 0x03, 0x00, 0x78, 0x99, 0x98, 0x09,
	}
	testSPS = []byte{
		0x42, 0x01, 0x01, 0x01, 0x60, 0x00, 0x00, 0x03,
		0x00, 0x90, 0x00, 0x00, 0x03, 0x00, 0x00, 0x03,
		0x00, 0x78, 0xa0, 0x03, 0xc0, 0x80, 0x10, 0xe5,
		0x96, 0x66, 0x69, 0x24, 0xca, 0xe0, 0x10, 0x00,
		0x00, 0x03, 0x00, 0x10, 0x00, 0x00, 0x03, 0x01,
		0xe0, 0x80,
	}
	testPPS = []byte{0x44, 0x01, 0xc1, 0x72, 0xb4, 0x62, 0x40}
	testIDR = append([]byte{0x26, 0x01, 0xaf}, bytes.Repeat([]byte{0x55}, 400)...)
	testTRL = append([]byte{0x02, 0x01, 0xd0}, bytes.Repeat([]byte{0x66}, 100)...)
)

func annexB(nalus ...[]byte) []byte {
	var ret []byte
	for _, nalu := range nalus {
		ret = append(ret, 0x00, 0x00, 0x00, 0x01)
		ret = append(ret, nalu...)
	}
	return ret
}

type demuxedFile struct {
	services []*astits.DescriptorService
	pts      []int64
	payloads [][]byte
}

func demuxFile(t *testing.T, path string) demuxedFile {
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var ret demuxedFile
	dem := astits.NewDemuxer(context.Background(), f)

	for {
		d, err := dem.NextData()
		if errors.Is(err, astits.ErrNoMorePackets) {
			break
		}
		require.NoError(t, err)

		if d.SDT != nil {
			for _, s := range d.SDT.Services {
				for _, desc := range s.Descriptors {
					if desc.Service != nil {
						ret.services = append(ret.services, desc.Service)
					}
				}
			}
		}

		if d.PES != nil {
			ret.pts = append(ret.pts, d.PES.Header.OptionalHeader.PTS.Base)
			ret.payloads = append(ret.payloads, d.PES.Data)
		}
	}

	return ret
}

func TestMPEGTS(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "18b2f5c6a10.ts_")

	m := &MPEGTS{
		ServiceProvider: "judocare.cz",
		ServiceName:     "JUDOCARE-MAT3.1",
	}

	err := m.Open(path)
	require.NoError(t, err)

	err = m.WriteSample(Timestamp(100), Timestamp(100), annexB(testVPS, testSPS, testPPS, testIDR))
	require.NoError(t, err)

	err = m.WriteSample(Timestamp(101), Timestamp(101), annexB(testTRL))
	require.NoError(t, err)

	err = m.WriteSample(Timestamp(102), Timestamp(102), annexB(testTRL))
	require.NoError(t, err)

	err = m.Finalize()
	require.NoError(t, err)

	fi, err := os.Stat(path)
	require.NoError(t, err)
	require.Zero(t, fi.Size()%tsPacketSize)

	d := demuxFile(t, path)

	require.Len(t, d.services, 1)
	require.Equal(t, "judocare.cz", string(d.services[0].Provider))
	require.Equal(t, "JUDOCARE-MAT3.1", string(d.services[0].Name))

	require.Len(t, d.pts, 3)
	require.Equal(t, int64(3600), d.pts[1]-d.pts[0])
	require.Equal(t, int64(3600), d.pts[2]-d.pts[1])

	require.True(t, bytes.Contains(d.payloads[0], annexB(testVPS, testSPS, testPPS, testIDR)))
	require.True(t, bytes.Contains(d.payloads[1], annexB(testTRL)))
}

func TestMPEGTSReopen(t *testing.T) {
	dir := t.TempDir()
	m := &MPEGTS{}

	for _, name := range []string{"a.ts_", "b.ts_"} {
		err := m.Open(filepath.Join(dir, name))
		require.NoError(t, err)

		err = m.WriteSample(0, 0, annexB(testVPS, testSPS, testPPS, testIDR))
		require.NoError(t, err)

		err = m.Finalize()
		require.NoError(t, err)

		d := demuxFile(t, filepath.Join(dir, name))
		require.Empty(t, d.services)
		require.Len(t, d.pts, 1)
	}
}

func TestMPEGTSErrors(t *testing.T) {
	m := &MPEGTS{}

	err := m.WriteSample(0, 0, annexB(testIDR))
	require.EqualError(t, err, "no file is open")

	err = m.Finalize()
	require.EqualError(t, err, "no file is open")

	err = m.Open(filepath.Join(t.TempDir(), "missing", "a.ts_"))
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "a.ts_")
	err = m.Open(path)
	require.NoError(t, err)

	err = m.Open(path)
	require.EqualError(t, err, "a file is already open")

	err = m.Finalize()
	require.NoError(t, err)
}

func TestMarshalSDT(t *testing.T) {
	buf := marshalSDT("judocare.cz", "JUDOCARE-MAT1.2")
	require.Len(t, buf, tsPacketSize)
	require.Equal(t, []byte{0x47, 0x40, 0x11, 0x10, 0x00, 0x42}, buf[:6])

	sectionLen := int(buf[6]&0x0f)<<8 | int(buf[7])
	section := buf[5 : 5+3+sectionLen]

	// the CRC of a section that includes its own CRC is zero
	require.Equal(t, uint32(0), crc32MPEG2(section))
}
