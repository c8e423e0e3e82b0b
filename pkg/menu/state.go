package menu

// Mode selects what the main page does with each reading.
type Mode int

const (
	// Measure shows capacitance and frequency.
	Measure Mode = iota
	// Check compares the reading against the nominal value.
	Check
	// Off idles with the indicator undetermined.
	Off
	numModes
)

// Next returns the following mode, wrapping from Off to Measure.
func (m Mode) Next() Mode {
	return (m + 1) % numModes
}

func (m Mode) String() string {
	switch m {
	case Measure:
		return "measure"
	case Check:
		return "check"
	case Off:
		return "off"
	}
	return "unknown"
}

// Page is the screen currently shown.
type Page int

const (
	Main Page = iota
	Settings
	Records
)

func (p Page) String() string {
	switch p {
	case Main:
		return "main"
	case Settings:
		return "settings"
	case Records:
		return "records"
	}
	return "unknown"
}

// Buttons in scan order. Roles depend on the page:
//
//	         Main         Settings        Records       confirm delete
//	Button1  cycle mode   cycle nominal   cursor down   cancel
//	Button2  record       cycle tolerance cursor up     -
//	Button3  settings     back            -             -
//	Button4  records      -               back          -
//	Button5  -            manual entry    delete?       delete
const (
	Button1 = iota
	Button2
	Button3
	Button4
	Button5
	NumButtons
)
