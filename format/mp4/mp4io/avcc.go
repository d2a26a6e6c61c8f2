package mp4io

import (
	"fmt"

	"github.com/ugparu/gomp4/codec/h264"
)

const AVCC = Tag(0x61766343)

// AVC1Conf is the avcC box.
type AVC1Conf struct {
	Record h264.AVCDecoderConfRecord
	AtomPos
}

func (a *AVC1Conf) Tag() Tag {
	return AVCC
}

func (a *AVC1Conf) Len() int {
	return HeaderSize + a.Record.Len()
}

func (a *AVC1Conf) Marshal(b []byte) (n int) {
	n = putHeader(b, AVCC, a.Len(), false)
	n += a.Record.Marshal(b[n:])
	return
}

func (a *AVC1Conf) Unmarshal(b []byte, offset int) (n int, err error) {
	a.AtomPos.setPos(offset, len(b))
	hdr := headerLen(b)
	if _, err = a.Record.Unmarshal(b[hdr:]); err != nil {
		return 0, parseErr("AVCDecoderConfRecord", offset+hdr, err)
	}
	return len(b), nil
}

func (*AVC1Conf) Children() []Atom {
	return nil
}

func (a *AVC1Conf) String() string {
	r := &a.Record
	return fmt.Sprintf("profile=%d level=%d nal_length=%d sps=%d pps=%d",
		r.AVCProfileIndication, r.AVCLevelIndication, r.LengthSizeMinusOne+1, len(r.SPS), len(r.PPS))
}
