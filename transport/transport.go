package transport

type Protocol string

const (
	TCP Protocol = "tcp"
	// Pipe is an in-memory stream with no network behind it.
	Pipe Protocol = "pipe"
)

type Addr interface {
	Protocol() Protocol
	String() string
}
