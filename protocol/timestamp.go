package protocol

import "time"

// EncodeTimestamp packs a datetime into the device's 32-bit packed
// format: ((((Y%100)*12 + (M-1))*31 + (D-1))*86400) + h*3600 + m*60 + s.
func EncodeTimestamp(t time.Time) uint32 {
	year := t.Year() % 100
	month := int(t.Month()) - 1
	day := t.Day() - 1
	d := ((year*12+month)*31 + day) * 86400
	d += t.Hour()*3600 + t.Minute()*60 + t.Second()
	return uint32(d)
}

// DecodeTimestamp inverts EncodeTimestamp, with year offset from 2000.
func DecodeTimestamp(v uint32) time.Time {
	t := int(v)
	second := t % 60
	t /= 60
	minute := t % 60
	t /= 60
	hour := t % 24
	t /= 24
	day := t%31 + 1
	t /= 31
	month := t%12 + 1
	t /= 12
	year := t + 2000
	return time.Date(year, time.Month(month), day, hour, minute, second, 0, time.UTC)
}
