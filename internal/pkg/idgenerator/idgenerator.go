// nolint: gochecknoglobals
package idgenerator

import gonanoid "github.com/matoous/go-nanoid/v2"

const (
	RequestIdLength = 15
	TaskIdLength    = 15
	SessionIdLength = 10
)

// alphabet used in ID generation.
var alphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// RequestId identifies one request on a control connection.
func RequestId() string {
	return gonanoid.MustGenerate(alphabet, RequestIdLength)
}

// TaskId identifies one task in the daemon queue.
func TaskId() string {
	return gonanoid.MustGenerate(alphabet, TaskIdLength)
}

// SessionId identifies one control connection.
func SessionId() string {
	return gonanoid.MustGenerate(alphabet, SessionIdLength)
}

// Random returns a random ID of the given length.
func Random(length int) string {
	return gonanoid.MustGenerate(alphabet, length)
}
