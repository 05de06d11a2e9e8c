package logging

import (
	"go.uber.org/zap/zapcore"
)

// Strings logs a list of strings as a JSON array, at most maxListed entries
// are written
type Strings []string

const maxListed = 20

func (a Strings) MarshalLogArray(enc zapcore.ArrayEncoder) error {
	for i, s := range a {
		if i == maxListed {
			enc.AppendString("...")
			break
		}
		enc.AppendString(s)
	}
	return nil
}
