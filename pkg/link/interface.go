package link

// Device defines the interface for meter connections (real or simulated).
type Device interface {
	Connect() error
	Close() error
	// Reports delivers one telemetry report per meter loop iteration.
	Reports() <-chan Report
	// Prompts delivers manual entry requests. Each one must be answered.
	Prompts() <-chan Prompt
	Answer(text string) error
	IsConnected() bool
}

// Ensure Serial implements Device.
var _ Device = (*Serial)(nil)

// Ensure Mock implements Device.
var _ Device = (*Mock)(nil)
