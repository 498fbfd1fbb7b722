package blob

import "time"

// Timestamp is a decoded 64-bit device timestamp (§6 "Timestamp decoding").
type Timestamp struct {
	Year        int
	Month       int
	Day         int
	Timezone    int
	Hour        int
	Minute      int
	Second      int
	Millisecond int
}

// DecodeTimestamp unpacks a 64-bit device timestamp word, MSB to LSB:
// 5 unused, 12 year, 4 month, 5 day, 11 timezone, 5 hour, 6 minute,
// 6 second, 10 millisecond. Grounded on VisionaryData.cpp's getTimestampMS.
func DecodeTimestamp(raw uint64) Timestamp {
	return Timestamp{
		Millisecond: int(raw & 0x3FF),
		Second:      int((raw >> 10) & 0x3F),
		Minute:      int((raw >> 16) & 0x3F),
		Hour:        int((raw >> 22) & 0x1F),
		Timezone:    int((raw >> 27) & 0x7FF),
		Day:         int((raw >> 38) & 0x1F),
		Month:       int((raw >> 43) & 0xF),
		Year:        int((raw >> 47) & 0xFFF),
	}
}

// UTC assembles the decoded fields into an absolute UTC time. The
// timezone field is recorded but not applied as an offset: every device
// observed in the field reports timezone 0, and the spec's own worked
// example (§8 scenario 4) only exercises that case.
func (t Timestamp) UTC() time.Time {
	return time.Date(t.Year, time.Month(t.Month), t.Day, t.Hour, t.Minute, t.Second, t.Millisecond*int(time.Millisecond), time.UTC)
}

// UnixMilli returns the timestamp as milliseconds since the Unix epoch.
func (t Timestamp) UnixMilli() int64 {
	return t.UTC().UnixMilli()
}
