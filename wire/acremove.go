package wire

import "fmt"

// AcRemoveLen is the on-wire size of one AcRemove record.
const AcRemoveLen = 4

// AcRemove signals that one aircraft no longer exists on the sender.
type AcRemove struct {
	ModeSID uint32
}

// AppendTo appends the encoded record (modeSID uint24 plus one reserved
// byte) to buf and returns the result.
func (r AcRemove) AppendTo(buf []byte) []byte {
	buf = appendUint24(buf, r.ModeSID)
	return append(buf, 0)
}

// NumAcRemove converts a message length into the number of records carried.
func NumAcRemove(msgLen int) int {
	return (msgLen - HeaderLen) / AcRemoveLen
}

// DecodeAcRemoveMsg parses a complete AcRemove message into its records.
func DecodeAcRemoveMsg(data []byte) (MsgHeader, []AcRemove, error) {
	hdr, err := DecodeHeader(data)
	if err != nil {
		return hdr, nil, err
	}
	if hdr.Version != VerAcRemove {
		return hdr, nil, fmt.Errorf("%w: ac remove version %d", ErrBadVersion, hdr.Version)
	}
	body := len(data) - HeaderLen
	if body < AcRemoveLen || body%AcRemoveLen != 0 {
		return hdr, nil, fmt.Errorf("%w: ac remove message has %d payload bytes, record size %d",
			ErrBadLength, body, AcRemoveLen)
	}
	recs := make([]AcRemove, 0, body/AcRemoveLen)
	for off := HeaderLen; off < len(data); off += AcRemoveLen {
		recs = append(recs, AcRemove{ModeSID: getUint24(data[off:])})
	}
	return hdr, recs, nil
}
