package infinity

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"
)

// registerKeySize is the register identifier prefix of a reply payload:
// table high byte, table low byte, register number.
const registerKeySize = 3

// zoneCount is the number of zones an Infinity system supports.
const zoneCount = 8

type fieldKind int

const (
	// fieldUnknown bytes are consumed but not reported.
	fieldUnknown fieldKind = iota
	// fieldUTF8 is a NUL-padded string of reps bytes.
	fieldUTF8
	// fieldName is a 12-byte NUL-padded UTF-8 zone name.
	fieldName
	fieldUint8
	fieldInt8
	fieldUint16
)

// repeatedZones marks a field reported once per zone.
// Zone items are prefixed "Zone1".."Zone8" so that unit suffixes like
// Times16 remain at the end of the derived item name.
const repeatedZones = -1

type fieldDef struct {
	// reps is the byte count for fieldUTF8/fieldUnknown, repeatedZones
	// for per-zone fields, and 1 otherwise.
	reps int
	kind fieldKind
	name string
}

type registerDef struct {
	name   string
	fields []fieldDef

	// group defines a trailing field group repeated while payload bytes
	// remain; groupName plus the repetition ordinal prefixes each item.
	groupName string
	group     []fieldDef
}

// regInfoDef builds the register-directory layout shared by every
// table's RegInfo register: a fixed header followed by one
// (Length, Type) pair per listed register.
func regInfoDef(name string) registerDef {
	return registerDef{
		name: name,
		fields: []fieldDef{
			{1, fieldUint8, "Unknown1"},
			{1, fieldUint8, "Unknown2"},
			{8, fieldUTF8, "TableName"},
			{1, fieldUint8, "Unknown3"},
			{1, fieldUint8, "Unknown4"},
			{1, fieldUint8, "NumRegisters"},
		},
		groupName: "Registers",
		group: []fieldDef{
			{1, fieldUint8, "Length"}, // 0 if register does not exist
			{1, fieldUint8, "Type"},   // 0 none, 1 read-only, 3 read-write
		},
	}
}

// registerInfo holds the register repertoire finitude decodes, keyed by
// the lower-case hex register identifier. Registers not listed here still
// flow through deduplication; they just decode no values. Registers
// listed with no fields decode a name but leave the whole payload as
// remainder.
var registerInfo = map[string]registerDef{
	// table 01 DEVCONFG
	"000101": regInfoDef("RegInfo01"),
	"000102": {name: "AddressInfo", fields: []fieldDef{
		{1, fieldUint8, "DeviceClass"}, // MSB of the address
		{1, fieldUint8, "DeviceBus"},   // LSB of the address
		{1, fieldUint8, "Unknown"},
	}},
	"000103": {name: "UnknownInfo0103", fields: []fieldDef{
		{1, fieldUint8, "Unknown1"},
		{1, fieldUint8, "Unknown2"},
		{1, fieldUint8, "Unknown3"},
		{1, fieldUint8, "Unknown4"},
	}},
	"000104": {name: "DeviceInfo", fields: []fieldDef{
		{48, fieldUTF8, "Module"},
		{16, fieldUTF8, "Firmware"},
		{20, fieldUTF8, "Model"},
		{36, fieldUTF8, "Serial"},
	}},

	// table 02 SYSTIME
	"000201": regInfoDef("RegInfo02"),
	"000202": {name: "SysTime", fields: []fieldDef{
		{1, fieldUint8, "Hour"},
		{1, fieldUint8, "Minute"},
		{1, fieldUint8, "DayOfWeek"},
	}},
	"000203": {name: "SysDate", fields: []fieldDef{
		{1, fieldUint8, "Day"},
		{1, fieldUint8, "Month"},
		{1, fieldUint8, "Year"},
	}},

	// table 03 RLCSMAIN
	"000301": regInfoDef("RegInfo03"),
	"000302": {name: "Temperatures", groupName: "Sensor", group: []fieldDef{
		{1, fieldUint8, "State"}, // 01 connected, 04 open circuit
		{1, fieldUint8, "Type"},
		{1, fieldUint16, "TempTimes16"},
	}},
	"000303": {name: "Pressures", groupName: "Sensor", group: []fieldDef{
		{1, fieldUint8, "State"},
		{1, fieldUint8, "Type"},
		{1, fieldUint16, "PressureTimes16"},
	}},
	"000306": {name: "AirHandler06", fields: []fieldDef{
		{1, fieldUint8, "Unknown1"},
		{1, fieldUint16, "BlowerRPM"},
		{1, fieldUint8, "Unknown2"},
		{1, fieldUint16, "Unknown3"},
		{1, fieldUint16, "Unknown4"},
		{1, fieldUint8, "Unknown5"},
		{1, fieldUint8, "State"}, // 0x00 blower off, 0x08 blower on
	}},
	"000307": {name: "UntitledAirHandler07", fields: []fieldDef{
		{3, fieldUnknown, ""},
	}},
	"000308": {name: "DamperControl", fields: []fieldDef{
		{repeatedZones, fieldUint8, "DamperPosition"}, // 0 closed, 0xf full open
	}},
	"00030d": {name: "Unknown030d"},
	// Tag/value pairs, possibly counters; the tags in 030e relate to
	// those in 030f, and 0310's to 0311's.
	"00030e": {name: "UnknownOneByte", groupName: "OneByte", group: []fieldDef{
		{1, fieldUint8, "Tag"},
		{1, fieldUint8, "Value"},
	}},
	"00030f": {name: "UnknownTwoByte", groupName: "TwoByte", group: []fieldDef{
		{1, fieldUint8, "Tag"},
		{1, fieldUint16, "Value"},
	}},
	"000310": {name: "UnknownThreeByte", groupName: "ThreeByte", group: []fieldDef{
		{1, fieldUint8, "Tag"},
		{1, fieldUint8, "Unknown"},
		{1, fieldUint16, "Value"},
	}},
	"000311": {name: "UnknownThreeByteBookend", groupName: "ThreeByte", group: []fieldDef{
		{1, fieldUint8, "Tag"},
		{1, fieldUint8, "Unknown"},
		{1, fieldUint16, "Value"},
	}},
	"000316": {name: "AirHandler16", fields: []fieldDef{
		{1, fieldUint8, "State"}, // State & 0x03 != 0 when electric heat is on
		{3, fieldUnknown, ""},
		{1, fieldUint16, "AirflowCFM"},
		{1, fieldUint16, "Unknown0"},
		{1, fieldUint16, "Unknown0078"},
		{1, fieldUint16, "Unknown0100"},
		{1, fieldUint8, "Unknown02"},
		{1, fieldUint8, "UnknownFanSpeed"},
	}},
	"000319": {name: "DamperState", fields: []fieldDef{
		{repeatedZones, fieldUint8, "DamperPosition"}, // 0xff for zone not present
	}},
	"00031b": {name: "Unknown031b", fields: []fieldDef{
		{1, fieldUint8, "Unknown"},
	}},
	"00031c": {name: "LastStatus", fields: []fieldDef{
		{1, fieldUint8, "StatusCode"}, // "fault code" for faults
		{1, fieldUint8, "Severity"},   // 1 event, 2 fault, 3 system malfunction
		{38, fieldUTF8, "Message"},
	}},

	// table 04 VARSPEED (air handler)
	"000401": regInfoDef("RegInfo04"),
	"000403": {name: "UntitledAirHandler03", fields: []fieldDef{
		{4, fieldUnknown, ""},
	}},
	"000409": {name: "UntitledAirHandler", fields: []fieldDef{
		{4, fieldUnknown, ""},
	}},
	"00041e": {name: "SmartSensor"},

	// table 06 LINESET / VAR COMP (heat pump)
	"000601": regInfoDef("RegInfo06"),
	"00060d": {name: "UntitledHeatPump0d", fields: []fieldDef{
		{1, fieldUint8, "Unknown"},
	}},
	"00060e": {name: "UntitledHeatPump0e", fields: []fieldDef{
		{1, fieldUint8, "CompressorStage"},
	}},
	"000610": {name: "UntitledHeatPump10", fields: []fieldDef{
		{4, fieldUnknown, ""},
	}},
	"00061a": {name: "UntitledHeatPump1a", fields: []fieldDef{
		{1, fieldUint8, "Unknown"},
	}},

	// table 07
	"000701": regInfoDef("RegInfo07"),

	// table 30
	"003001": regInfoDef("RegInfo30"),

	// table 34 (HRV/ERV, dampers, NIM)
	"003401": regInfoDef("RegInfo34"),
	"003404": {name: "HRVState", fields: []fieldDef{
		{1, fieldUint8, "Speed"}, // 0 off, 1 low, 2 med, 3 high
	}},
	"003405": {name: "Unknown3405", fields: []fieldDef{
		{1, fieldUint8, "Unknown1"},
		{1, fieldUint16, "Unknown0"},
	}},

	// table 3b SAMINFO (thermostat)
	"003b01": regInfoDef("RegInfo3b"),
	"003b02": {name: "TStatCurrentParams", fields: []fieldDef{
		{1, fieldUint8, "ZonesUnknown"},
		{2, fieldUnknown, ""},
		{repeatedZones, fieldUint8, "CurrentTemp"},
		{repeatedZones, fieldUint8, "CurrentHumidity"},
		{1, fieldUnknown, ""},
		{1, fieldInt8, "OutdoorAirTemp"}, // -1 if sensor not present
		{1, fieldUint8, "ZonesUnoccupied"},
		{1, fieldUint8, "Mode"}, // high nybble stage, low nybble HvacMode
		{5, fieldUnknown, ""},
		{1, fieldUint8, "DisplayedZone"},
	}},
	"003b03": {name: "TStatZoneParams", fields: []fieldDef{
		{1, fieldUint8, "ZonesUnknown"},
		{2, fieldUnknown, ""},
		{repeatedZones, fieldUint8, "FanMode"},
		{1, fieldUint8, "ZonesHolding"},
		{repeatedZones, fieldUint8, "CurrentHeatSetpoint"},
		{repeatedZones, fieldUint8, "CurrentCoolSetpoint"},
		{repeatedZones, fieldUint8, "CurrentHumidityTarget"},
		{1, fieldUint8, "FanAutoConfig"},
		{1, fieldUnknown, ""},
		{repeatedZones, fieldUint16, "HoldDuration"},
		{repeatedZones, fieldName, "Name"},
	}},
	"003b04": {name: "TStatVacationParams", fields: []fieldDef{
		{1, fieldUint8, "Active"},
		{1, fieldUint16, "Hours"},
		{1, fieldUint8, "MinTemp"},
		{1, fieldUint8, "MaxTemp"},
		{1, fieldUint8, "MinHumidity"},
		{1, fieldUint8, "MaxHumidity"},
		{1, fieldUint8, "FanMode"},
	}},
	"003b05": {name: "TStatUntitled05"},
	"003b06": {name: "TStatUntitled", fields: []fieldDef{
		{1, fieldUint8, "ValidZones"}, // zone bitmap
		{11, fieldUnknown, ""},
		{20, fieldUTF8, "DealerName"},
		{20, fieldUTF8, "DealerPhone"},
	}},
	"003b0e": {name: "SamNotification", fields: []fieldDef{
		{1, fieldUint8, "Unknown"},
	}},

	// table 3e DCLEGACY
	"003e01": {name: "LegacyHeatPumpTemperatures", fields: []fieldDef{
		{1, fieldUint16, "OutsideTempTimes16"},
		{1, fieldUint16, "CoilTempTimes16"},
	}},
	"003e02": {name: "LegacyHeatPumpStage", fields: []fieldDef{
		// Shift right one bit for the stage number; higher stages mean
		// auxiliary heat is on.
		{1, fieldUint8, "StageShift1"},
	}},
	"003e08": {name: "LegacyHeatPumpUnknown08"},
	"003e0a": {name: "LegacyHeatPumpUnknown0a"},
}

// ParseRegister decodes a reply frame's payload into a register name, a
// map of named values, and the trailing remainder (hex-encoded) left after
// the recognised fields.
//
// Unknown registers yield the name "Register(<key>)", an empty value map,
// and the entire post-key payload as remainder. A payload shorter than
// the register identifier yields an empty name.
func (f *Frame) ParseRegister() (string, map[string]any, string) {
	if len(f.Data) < registerKeySize {
		return "", map[string]any{}, hex.EncodeToString(f.Data)
	}

	key := hex.EncodeToString(f.Data[:registerKeySize])
	payload := f.Data[registerKeySize:]

	def, known := registerInfo[key]
	if !known {
		return fmt.Sprintf("Register(%s)", key), map[string]any{}, hex.EncodeToString(payload)
	}

	values := make(map[string]any)
	cursor := payload
	ok := true
	for _, fd := range def.fields {
		cursor, ok = parseField(cursor, fd, "", values)
		if !ok {
			break
		}
	}

	if ok && len(def.group) > 0 {
		size := groupByteSize(def.group)
		for rep := 1; len(cursor) >= size; rep++ {
			prefix := fmt.Sprintf("%s%d", def.groupName, rep)
			for _, fd := range def.group {
				cursor, _ = parseField(cursor, fd, prefix, values)
			}
		}
	}

	return def.name, values, hex.EncodeToString(cursor)
}

// parseField consumes one field definition from cursor, adding named
// values to the map. Returns the advanced cursor and false if the payload
// was too short for the field.
func parseField(cursor []byte, fd fieldDef, prefix string, values map[string]any) ([]byte, bool) {
	if fd.reps == repeatedZones {
		for zone := 1; zone <= zoneCount; zone++ {
			unit := fieldDef{reps: 1, kind: fd.kind, name: fmt.Sprintf("Zone%d%s", zone, fd.name)}
			var ok bool
			cursor, ok = parseField(cursor, unit, prefix, values)
			if !ok {
				return cursor, false
			}
		}
		return cursor, true
	}

	size := fieldByteSize(fd)
	if len(cursor) < size {
		return cursor, false
	}

	var value any
	switch fd.kind {
	case fieldUnknown:
		// consumed, never reported
	case fieldUTF8:
		value = decodeUTF8(cursor[:size])
	case fieldName:
		value = decodeUTF8(cursor[:size])
	case fieldUint8:
		value = int(cursor[0])
	case fieldInt8:
		value = int(int8(cursor[0]))
	case fieldUint16:
		value = int(binary.BigEndian.Uint16(cursor[:2]))
	}

	if fd.name != "" && fd.kind != fieldUnknown {
		values[prefix+fd.name] = value
	}
	return cursor[size:], true
}

// fieldByteSize returns the wire size of a single (non-zone) field.
func fieldByteSize(fd fieldDef) int {
	switch fd.kind {
	case fieldUTF8, fieldUnknown:
		return fd.reps
	case fieldName:
		return 12
	case fieldUint16:
		return 2
	default:
		return 1
	}
}

// groupByteSize returns the wire size of one repetition of a field group.
func groupByteSize(group []fieldDef) int {
	size := 0
	for _, fd := range group {
		size += fieldByteSize(fd)
	}
	return size
}

// decodeUTF8 decodes a NUL-padded field, dropping invalid bytes.
func decodeUTF8(b []byte) string {
	return strings.Trim(strings.ToValidUTF8(string(b), ""), "\x00")
}
