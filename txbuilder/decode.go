package txbuilder

import (
	"encoding/binary"
	"errors"

	"github.com/halcyon-labs/suipool/types"
)

// ErrTruncated is returned when serialized transaction bytes end early.
var ErrTruncated = errors.New("txbuilder: truncated transaction bytes")

// Summary is the header of serialized transaction bytes: everything needed
// to account for the transaction without interpreting its commands.
type Summary struct {
	Sender     types.Address
	GasPrice   uint64
	GasBudget  uint64
	GasPayment []types.ObjectRef
}

// Parse decodes the header of transaction bytes produced by Build.
func Parse(txBytes []byte) (*Summary, error) {
	d := decoder{buf: txBytes}
	senderRaw, err := d.bytes()
	if err != nil {
		return nil, err
	}
	var s Summary
	s.Sender = types.BytesToAddress(senderRaw)
	if s.GasPrice, err = d.uint64(); err != nil {
		return nil, err
	}
	if s.GasBudget, err = d.uint64(); err != nil {
		return nil, err
	}
	n, err := d.uint64()
	if err != nil {
		return nil, err
	}
	for i := uint64(0); i < n; i++ {
		idRaw, err := d.bytes()
		if err != nil {
			return nil, err
		}
		version, err := d.uint64()
		if err != nil {
			return nil, err
		}
		digest, err := d.bytes()
		if err != nil {
			return nil, err
		}
		s.GasPayment = append(s.GasPayment, types.ObjectRef{
			ObjectID: types.BytesToObjectID(idRaw),
			Version:  types.Version(version),
			Digest:   types.Digest(digest),
		})
	}
	return &s, nil
}

type decoder struct {
	buf []byte
	off int
}

func (d *decoder) uint64() (uint64, error) {
	if d.off+8 > len(d.buf) {
		return 0, ErrTruncated
	}
	v := binary.BigEndian.Uint64(d.buf[d.off:])
	d.off += 8
	return v, nil
}

func (d *decoder) bytes() ([]byte, error) {
	n, err := d.uint64()
	if err != nil {
		return nil, err
	}
	if d.off+int(n) > len(d.buf) {
		return nil, ErrTruncated
	}
	out := d.buf[d.off : d.off+int(n)]
	d.off += int(n)
	return out, nil
}
