package coincache

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/halcyon-labs/suipool/types"
)

const (
	recordPrefix  = "SPCC1"
	recordVersion = uint8(1)
)

// ErrInvalidRecord is returned when a cached payload fails to decode.
var ErrInvalidRecord = errors.New("coincache: invalid coin record")

// CoinRecord is the cached state of one gas coin.
type CoinRecord struct {
	ObjectID types.ObjectID `json:"objectId"`
	Digest   types.Digest   `json:"digest"`
	Version  types.Version  `json:"version"`
	Balance  uint64         `json:"balance"`
}

// Reference returns the coin's exact-version object reference.
func (r *CoinRecord) Reference() types.ObjectRef {
	return types.ObjectRef{ObjectID: r.ObjectID, Version: r.Version, Digest: r.Digest}
}

type recordEnvelope struct {
	Version uint8      `json:"v"`
	Record  CoinRecord `json:"r"`
}

// EncodeRecord serializes a coin record for storage.
func EncodeRecord(rec *CoinRecord) ([]byte, error) {
	body, err := json.Marshal(recordEnvelope{Version: recordVersion, Record: *rec})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	out := make([]byte, len(recordPrefix)+len(body))
	copy(out, recordPrefix)
	copy(out[len(recordPrefix):], body)
	return out, nil
}

// DecodeRecord parses stored bytes into a coin record.
func DecodeRecord(data []byte) (*CoinRecord, error) {
	if len(data) <= len(recordPrefix) || !bytes.Equal(data[:len(recordPrefix)], []byte(recordPrefix)) {
		return nil, ErrInvalidRecord
	}
	var env recordEnvelope
	if err := json.Unmarshal(data[len(recordPrefix):], &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	if env.Version != recordVersion {
		return nil, ErrInvalidRecord
	}
	return &env.Record, nil
}
