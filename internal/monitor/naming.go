package monitor

import "strings"

// tableAliases maps bus register table names onto the short names used in
// gauge keys. Tables mapped to the empty string contribute no table
// component at all.
var tableAliases = map[string]string{
	"AirHandler06":        "airhandler",
	"AirHandler16":        "airhandler",
	"TStatCurrentParams":  "",
	"TStatZoneParams":     "",
	"TStatVacationParams": "vacation",
	"HeatPump01":          "heatpump",
	"HeatPump02":          "heatpump",
}

// TableAlias resolves the gauge-key table component for a register table
// name. Unmapped tables pass through unchanged.
func TableAlias(table string) string {
	if alias, ok := tableAliases[table]; ok {
		return alias
	}
	return table
}

// stripScaleSuffix removes suffix from item when its first occurrence ends
// the string. Items like "Unknown0Times16Thing" keep their name untouched.
func stripScaleSuffix(item, suffix string) (string, bool) {
	idx := strings.Index(item, suffix)
	if idx < 0 || idx+len(suffix) != len(item) {
		return item, false
	}
	return item[:idx], true
}

// rewriteUnitToken lower-cases an embedded RPM or CFM token and separates
// it from any surrounding text with underscores, so "FanRPM" becomes
// "fan_rpm" and "RPMLimit" becomes "rpm_limit". RPM is checked first; at
// most one token is rewritten.
func rewriteUnitToken(item string) string {
	for _, token := range []string{"RPM", "CFM"} {
		idx := strings.Index(item, token)
		if idx < 0 {
			continue
		}
		pre := item[:idx]
		post := item[idx+len(token):]

		var b strings.Builder
		b.WriteString(pre)
		if pre != "" {
			b.WriteByte('_')
		}
		b.WriteString(strings.ToLower(token))
		if post != "" {
			b.WriteByte('_')
		}
		b.WriteString(post)
		return b.String()
	}
	return item
}

// DeriveGauge turns a (table alias, register item, raw value) triple into
// a gauge key and the scaled value to store.
//
// Fixed-point items carry a Times7 or Times16 suffix on the bus; the
// suffix is stripped and the value divided accordingly. With a non-empty
// table alias the whole key is lower-cased; without one the item keeps its
// original casing.
func DeriveGauge(table, item string, value float64) (string, float64) {
	divisor := 1.0
	if stripped, ok := stripScaleSuffix(item, "Times7"); ok {
		item = stripped
		divisor = 7
	}
	if stripped, ok := stripScaleSuffix(item, "Times16"); ok {
		item = stripped
		divisor = 16
	}
	item = rewriteUnitToken(item)

	var gauge string
	if table != "" {
		gauge = "finitude_" + table + "_" + strings.ToLower(item)
	} else {
		gauge = "finitude_" + item
	}
	return gauge, value / divisor
}
