package encoder

// SetupPayload is the configuration body echoed back in a setup (0x57)
// reply. Field shapes and defaults are grounded on the device's observed
// call-site arguments: a 5-minute upload interval, binary switch 0x11
// (GPS+GPRS enabled, the rest off), and all alarm/DND/GPS-time slots and
// phone numbers left zeroed/empty.
type SetupPayload struct {
	UploadInterval [2]byte
	BinarySwitch   byte
	Alarm1         [3]byte
	Alarm2         [3]byte
	Alarm3         [3]byte
	DNDSwitch      byte
	DND1           [3]byte
	DND2           [3]byte
	DND3           [3]byte
	GPSTimeSwitch  byte
	GPSTimeStart   [2]byte
	GPSTimeStop    [2]byte
	Phone1         string
	Phone2         string
	Phone3         string
}

// DefaultSetupPayload returns the all-defaults configuration: a 5-minute
// (0x0300) upload interval, binary switch 0x11, and every alarm/DND/
// GPS-time/phone field zeroed or empty.
func DefaultSetupPayload() SetupPayload {
	return SetupPayload{
		UploadInterval: [2]byte{0x03, 0x00},
		BinarySwitch:   0x11,
	}
}

// Encode concatenates the fields in wire order, joining the three phone
// number fields with 0x3B.
func (p SetupPayload) Encode() []byte {
	out := make([]byte, 0, 26+len(p.Phone1)+len(p.Phone2)+len(p.Phone3))
	out = append(out, p.UploadInterval[:]...)
	out = append(out, p.BinarySwitch)
	out = append(out, p.Alarm1[:]...)
	out = append(out, p.Alarm2[:]...)
	out = append(out, p.Alarm3[:]...)
	out = append(out, p.DNDSwitch)
	out = append(out, p.DND1[:]...)
	out = append(out, p.DND2[:]...)
	out = append(out, p.DND3[:]...)
	out = append(out, p.GPSTimeSwitch)
	out = append(out, p.GPSTimeStart[:]...)
	out = append(out, p.GPSTimeStop[:]...)
	out = append(out, []byte(p.Phone1)...)
	out = append(out, 0x3B)
	out = append(out, []byte(p.Phone2)...)
	out = append(out, 0x3B)
	out = append(out, []byte(p.Phone3)...)
	return out
}
