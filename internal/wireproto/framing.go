package wireproto

import (
	"encoding/binary"
	"encoding/json"
	"io"

	"github.com/pkg/errors"
)

// MaxBodySize is the maximum frame body length; receivers must reject and
// disconnect on oversize.
const MaxBodySize = 1 << 20 // 1 MiB

// ErrOversizeBody is returned when a frame's declared or actual length
// exceeds MaxBodySize.
var ErrOversizeBody = errors.New("wireproto: frame body exceeds maximum size")

// WriteFrame writes env as a 4-byte big-endian length prefix followed by its
// JSON encoding.
func WriteFrame(w io.Writer, env *Envelope) error {
	body, err := json.Marshal(env)
	if err != nil {
		return errors.Wrap(err, "wireproto: failed to marshal envelope")
	}
	if len(body) > MaxBodySize {
		return ErrOversizeBody
	}

	var lenPrefix [4]byte
	binary.BigEndian.PutUint32(lenPrefix[:], uint32(len(body)))
	if _, err := w.Write(lenPrefix[:]); err != nil {
		return errors.Wrap(err, "wireproto: failed to write frame length")
	}
	if _, err := w.Write(body); err != nil {
		return errors.Wrap(err, "wireproto: failed to write frame body")
	}
	return nil
}

// ReadFrame reads one length-prefixed frame and decodes its JSON body into
// an Envelope. It rejects (without reading the body) any frame whose
// declared length exceeds MaxBodySize.
func ReadFrame(r io.Reader) (*Envelope, error) {
	var lenPrefix [4]byte
	if _, err := io.ReadFull(r, lenPrefix[:]); err != nil {
		return nil, errors.Wrap(err, "wireproto: failed to read frame length")
	}
	bodyLen := binary.BigEndian.Uint32(lenPrefix[:])
	if bodyLen > MaxBodySize {
		return nil, ErrOversizeBody
	}

	body := make([]byte, bodyLen)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, errors.Wrap(err, "wireproto: failed to read frame body")
	}

	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, errors.Wrap(err, "wireproto: failed to decode envelope")
	}
	return &env, nil
}
