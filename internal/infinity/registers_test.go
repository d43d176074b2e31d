package infinity

import (
	"bytes"
	"testing"
)

// replyFrame builds a FuncReply frame whose payload is the register key
// followed by the register contents.
func replyFrame(t *testing.T, key []byte, contents []byte) *Frame {
	t.Helper()
	wire := Encode(0x2001, 0x4001, FuncReply, append(append([]byte{}, key...), contents...))
	bus := NewBus(bytes.NewReader(wire), nil)
	frame, err := bus.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame() error = %v", err)
	}
	return frame
}

func TestParseRegister_VacationParams(t *testing.T) {
	contents := []byte{
		0x01,       // Active
		0x00, 0x30, // Hours = 48
		0x3C, // MinTemp = 60
		0x55, // MaxTemp = 85
		0x0F, // MinHumidity
		0x3C, // MaxHumidity
		0x02, // FanMode
	}
	frame := replyFrame(t, []byte{0x00, 0x3b, 0x04}, contents)

	name, values, rest := frame.ParseRegister()
	if name != "TStatVacationParams" {
		t.Fatalf("name = %q, want TStatVacationParams", name)
	}
	if rest != "" {
		t.Errorf("rest = %q, want empty", rest)
	}

	want := map[string]int{
		"Active":      1,
		"Hours":       48,
		"MinTemp":     60,
		"MaxTemp":     85,
		"MinHumidity": 15,
		"MaxHumidity": 60,
		"FanMode":     2,
	}
	for k, v := range want {
		if got, ok := values[k].(int); !ok || got != v {
			t.Errorf("values[%q] = %v, want %d", k, values[k], v)
		}
	}
}

func TestParseRegister_DeviceInfo(t *testing.T) {
	contents := make([]byte, 0, 120)
	pad := func(s string, n int) {
		b := make([]byte, n)
		copy(b, s)
		contents = append(contents, b...)
	}
	pad("Air Handler", 48)
	pad("CESR131456-09", 16)
	pad("FE4ANF003", 20)
	pad("4112X12345", 36)

	frame := replyFrame(t, []byte{0x00, 0x01, 0x04}, contents)

	name, values, rest := frame.ParseRegister()
	if name != "DeviceInfo" {
		t.Fatalf("name = %q, want DeviceInfo", name)
	}
	if rest != "" {
		t.Errorf("rest = %q, want empty", rest)
	}
	if values["Module"] != "Air Handler" {
		t.Errorf("Module = %v", values["Module"])
	}
	if values["Model"] != "FE4ANF003" {
		t.Errorf("Model = %v", values["Model"])
	}
	if values["Serial"] != "4112X12345" {
		t.Errorf("Serial = %v", values["Serial"])
	}
}

func TestParseRegister_AirHandler06(t *testing.T) {
	contents := []byte{
		0x00,       // Unknown1
		0x03, 0xA2, // BlowerRPM = 930
		0x00,       // Unknown2
		0x00, 0x00, // Unknown3
		0x00, 0x00, // Unknown4
		0x00, // Unknown5
		0x08, // State = blower on
	}
	frame := replyFrame(t, []byte{0x00, 0x03, 0x06}, contents)

	name, values, _ := frame.ParseRegister()
	if name != "AirHandler06" {
		t.Fatalf("name = %q, want AirHandler06", name)
	}
	if values["BlowerRPM"] != 930 {
		t.Errorf("BlowerRPM = %v, want 930", values["BlowerRPM"])
	}
	if values["State"] != 8 {
		t.Errorf("State = %v, want 8", values["State"])
	}
}

func TestParseRegister_ZoneRepetition(t *testing.T) {
	// TStatCurrentParams: header byte, 2 unknown, 8 temps, 8 humidities,
	// 1 unknown, outdoor temp, unoccupied bitmap, mode, 5 unknown,
	// displayed zone.
	contents := []byte{0x0F, 0x00, 0x00}
	for zone := 0; zone < 8; zone++ {
		contents = append(contents, byte(68+zone)) // CurrentTemp
	}
	for zone := 0; zone < 8; zone++ {
		contents = append(contents, byte(40+zone)) // CurrentHumidity
	}
	contents = append(contents, 0x00) // unknown
	contents = append(contents, 0xFF) // OutdoorAirTemp = -1 (sensor absent)
	contents = append(contents, 0x00) // ZonesUnoccupied
	contents = append(contents, 0x21) // Mode = stage 2, heat
	contents = append(contents, 0xFF, 0x00, 0x00, 0x04, 0x59)
	contents = append(contents, 0x01) // DisplayedZone

	frame := replyFrame(t, []byte{0x00, 0x3b, 0x02}, contents)

	name, values, rest := frame.ParseRegister()
	if name != "TStatCurrentParams" {
		t.Fatalf("name = %q, want TStatCurrentParams", name)
	}
	if rest != "" {
		t.Errorf("rest = %q, want empty", rest)
	}
	if values["Zone1CurrentTemp"] != 68 {
		t.Errorf("Zone1CurrentTemp = %v, want 68", values["Zone1CurrentTemp"])
	}
	if values["Zone8CurrentTemp"] != 75 {
		t.Errorf("Zone8CurrentTemp = %v, want 75", values["Zone8CurrentTemp"])
	}
	if values["OutdoorAirTemp"] != -1 {
		t.Errorf("OutdoorAirTemp = %v, want -1", values["OutdoorAirTemp"])
	}
	if values["Mode"] != 0x21 {
		t.Errorf("Mode = %v, want 33", values["Mode"])
	}
}

func TestParseRegister_RepeatingGroup(t *testing.T) {
	// Temperatures: (State, Type, TempTimes16) repeated while bytes remain.
	contents := []byte{
		0x01, 0x11, 0x04, 0x00, // sensor 1: OAT, 64/16 = 4 degrees
		0x01, 0x12, 0x02, 0x80, // sensor 2: OCT, 640/16 = 40 degrees
		0x04, 0x14, 0x00, 0x00, // sensor 3: open circuit
	}
	frame := replyFrame(t, []byte{0x00, 0x03, 0x02}, contents)

	name, values, rest := frame.ParseRegister()
	if name != "Temperatures" {
		t.Fatalf("name = %q, want Temperatures", name)
	}
	if rest != "" {
		t.Errorf("rest = %q, want empty", rest)
	}
	if values["Sensor1TempTimes16"] != 0x0400 {
		t.Errorf("Sensor1TempTimes16 = %v, want %d", values["Sensor1TempTimes16"], 0x0400)
	}
	if values["Sensor2Type"] != 0x12 {
		t.Errorf("Sensor2Type = %v, want 18", values["Sensor2Type"])
	}
	if values["Sensor3State"] != 4 {
		t.Errorf("Sensor3State = %v, want 4", values["Sensor3State"])
	}
}

func TestParseRegister_SysDate(t *testing.T) {
	frame := replyFrame(t, []byte{0x00, 0x02, 0x03}, []byte{0x1F, 0x08, 0x1A})

	name, values, rest := frame.ParseRegister()
	if name != "SysDate" {
		t.Fatalf("name = %q, want SysDate", name)
	}
	if rest != "" {
		t.Errorf("rest = %q, want empty", rest)
	}
	if values["Day"] != 31 || values["Month"] != 8 || values["Year"] != 26 {
		t.Errorf("values = %v, want Day 31 Month 8 Year 26", values)
	}
}

func TestParseRegister_CompressorStage(t *testing.T) {
	frame := replyFrame(t, []byte{0x00, 0x06, 0x0e}, []byte{0x05})

	name, values, _ := frame.ParseRegister()
	if name != "UntitledHeatPump0e" {
		t.Fatalf("name = %q, want UntitledHeatPump0e", name)
	}
	if values["CompressorStage"] != 5 {
		t.Errorf("CompressorStage = %v, want 5", values["CompressorStage"])
	}
}

func TestParseRegister_HRVState(t *testing.T) {
	frame := replyFrame(t, []byte{0x00, 0x34, 0x04}, []byte{0x02})

	name, values, _ := frame.ParseRegister()
	if name != "HRVState" {
		t.Fatalf("name = %q, want HRVState", name)
	}
	if values["Speed"] != 2 {
		t.Errorf("Speed = %v, want 2", values["Speed"])
	}
}

func TestParseRegister_TagValueCounters(t *testing.T) {
	// UnknownTwoByte: (Tag, Value) pairs repeated while bytes remain.
	contents := []byte{
		0x20, 0x02, 0x63, // tag 0x20 = 611
		0x21, 0x00, 0x12, // tag 0x21 = 18
		0x2b, 0x26, 0xd8, // tag 0x2b = 9944
	}
	frame := replyFrame(t, []byte{0x00, 0x03, 0x0f}, contents)

	name, values, rest := frame.ParseRegister()
	if name != "UnknownTwoByte" {
		t.Fatalf("name = %q, want UnknownTwoByte", name)
	}
	if rest != "" {
		t.Errorf("rest = %q, want empty", rest)
	}
	if values["TwoByte1Tag"] != 0x20 || values["TwoByte1Value"] != 611 {
		t.Errorf("pair 1 = %v/%v, want 32/611", values["TwoByte1Tag"], values["TwoByte1Value"])
	}
	if values["TwoByte3Value"] != 9944 {
		t.Errorf("TwoByte3Value = %v, want 9944", values["TwoByte3Value"])
	}
}

func TestParseRegister_RegInfoDirectory(t *testing.T) {
	contents := make([]byte, 0, 18)
	contents = append(contents, 0x00, 0x20)
	name := make([]byte, 8)
	copy(name, "SYSTIME")
	contents = append(contents, name...)
	contents = append(contents, 0x00, 0xbc, 0x03) // NumRegisters = 3
	contents = append(contents,
		0x08, 0x01, // register 1: length 8, read-only
		0x03, 0x03, // register 2: length 3, read-write
		0x00, 0x00, // register 3: does not exist
	)

	frame := replyFrame(t, []byte{0x00, 0x02, 0x01}, contents)

	regName, values, rest := frame.ParseRegister()
	if regName != "RegInfo02" {
		t.Fatalf("name = %q, want RegInfo02", regName)
	}
	if rest != "" {
		t.Errorf("rest = %q, want empty", rest)
	}
	if values["TableName"] != "SYSTIME" {
		t.Errorf("TableName = %v, want SYSTIME", values["TableName"])
	}
	if values["Registers1Length"] != 8 || values["Registers1Type"] != 1 {
		t.Errorf("register 1 = %v/%v, want 8/1", values["Registers1Length"], values["Registers1Type"])
	}
	if values["Registers3Type"] != 0 {
		t.Errorf("Registers3Type = %v, want 0", values["Registers3Type"])
	}
}

func TestParseRegister_DealerInfo(t *testing.T) {
	contents := []byte{0x0F}
	contents = append(contents, make([]byte, 11)...)
	dealer := make([]byte, 20)
	copy(dealer, "ACME HVAC")
	contents = append(contents, dealer...)
	phone := make([]byte, 20)
	copy(phone, "555-0100")
	contents = append(contents, phone...)

	frame := replyFrame(t, []byte{0x00, 0x3b, 0x06}, contents)

	name, values, _ := frame.ParseRegister()
	if name != "TStatUntitled" {
		t.Fatalf("name = %q, want TStatUntitled", name)
	}
	if values["ValidZones"] != 15 {
		t.Errorf("ValidZones = %v, want 15", values["ValidZones"])
	}
	if values["DealerName"] != "ACME HVAC" {
		t.Errorf("DealerName = %v", values["DealerName"])
	}
	if values["DealerPhone"] != "555-0100" {
		t.Errorf("DealerPhone = %v", values["DealerPhone"])
	}
}

func TestParseRegister_FieldlessRegister(t *testing.T) {
	// Registers with a known name but no decoded layout still name
	// themselves and pass the payload through as remainder.
	frame := replyFrame(t, []byte{0x00, 0x03, 0x0d}, []byte{0x3d, 0x3f, 0x00})

	name, values, rest := frame.ParseRegister()
	if name != "Unknown030d" {
		t.Fatalf("name = %q, want Unknown030d", name)
	}
	if len(values) != 0 {
		t.Errorf("values = %v, want empty", values)
	}
	if rest != "3d3f00" {
		t.Errorf("rest = %q, want 3d3f00", rest)
	}
}

func TestParseRegister_UnknownRegister(t *testing.T) {
	frame := replyFrame(t, []byte{0x00, 0x3b, 0x07}, []byte{0xDE, 0xAD, 0xBE, 0xEF})

	name, values, rest := frame.ParseRegister()
	if name != "Register(003b07)" {
		t.Errorf("name = %q, want Register(003b07)", name)
	}
	if len(values) != 0 {
		t.Errorf("values = %v, want empty", values)
	}
	if rest != "deadbeef" {
		t.Errorf("rest = %q, want deadbeef", rest)
	}
}

func TestParseRegister_TruncatedPayload(t *testing.T) {
	// VacationParams cut short mid-field: parsing stops, no panic, and
	// the unconsumed bytes become the remainder.
	frame := replyFrame(t, []byte{0x00, 0x3b, 0x04}, []byte{0x01, 0x00})

	name, values, rest := frame.ParseRegister()
	if name != "TStatVacationParams" {
		t.Fatalf("name = %q", name)
	}
	if values["Active"] != 1 {
		t.Errorf("Active = %v, want 1", values["Active"])
	}
	if rest != "00" {
		t.Errorf("rest = %q, want %q", rest, "00")
	}
}

func TestPrintableAddress(t *testing.T) {
	if got := PrintableAddress(0x2001); got != "2001" {
		t.Errorf("PrintableAddress(0x2001) = %q, want %q", got, "2001")
	}
	if got := PrintableAddress(0x5201); got != "5201" {
		t.Errorf("PrintableAddress(0x5201) = %q, want %q", got, "5201")
	}
}
