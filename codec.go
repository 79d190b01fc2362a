// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rtbridge

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/fxamacker/cbor/v2"
)

// Codec encodes and decodes whole frames.
type Codec interface {
	Name() string
	Encode(v any) ([]byte, error)
	Decode(data []byte, v any) error
}

// JSONCodec is the default frame codec. Non-finite floats have no JSON
// form and fail to encode.
type JSONCodec struct{}

func (JSONCodec) Name() string { return CodecJSON }

func (JSONCodec) Encode(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerialization, err)
	}
	return b, nil
}

func (JSONCodec) Decode(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %w", ErrProtocol, err)
	}
	return nil
}

// CBORCodec encodes frames as canonical CBOR, which carries every float.
type CBORCodec struct{}

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("rtbridge: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

func (CBORCodec) Name() string { return CodecCBOR }

func (CBORCodec) Encode(v any) ([]byte, error) {
	b, err := cborEncMode.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerialization, err)
	}
	return b, nil
}

func (CBORCodec) Decode(data []byte, v any) error {
	if err := cbor.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %w", ErrProtocol, err)
	}
	return nil
}

// Frame codec names
const (
	CodecJSON = "json"
	CodecCBOR = "cbor"
)

// defaultCodec is used when no codec is specified
var defaultCodec Codec = JSONCodec{}

var (
	codecsMu sync.RWMutex
	codecs   = map[string]Codec{
		CodecJSON: JSONCodec{},
		CodecCBOR: CBORCodec{},
	}
)

// LookupCodec returns the frame codec registered under name.
func LookupCodec(name string) (Codec, error) {
	codecsMu.RLock()
	defer codecsMu.RUnlock()
	c, ok := codecs[name]
	if !ok {
		return nil, fmt.Errorf("unknown codec: %s", name)
	}
	return c, nil
}

// RegisterCodec makes a frame codec available by name.
func RegisterCodec(c Codec) {
	codecsMu.Lock()
	defer codecsMu.Unlock()
	codecs[c.Name()] = c
}
