package model

// missingFieldPlaceholder replaces empty structured fields before delivery
// so that every notification renders all nine fields.
const missingFieldPlaceholder = "-"

// NoticeFields holds the nine structured fields extracted from a notice's
// free text by the enrichment collaborator. All fields are free-form strings;
// dates and times keep whatever format the source notice used.
type NoticeFields struct {
	Name              string `json:"name"`
	BirthDate         string `json:"birth_date"`
	Residence         string `json:"residence"`
	DeathDatetime     string `json:"death_datetime"`
	DeathPlace        string `json:"death_place"`
	FuneralSchedule   string `json:"funeral_schedule"`
	FuneralPlace      string `json:"funeral_place"`
	DepartureDatetime string `json:"departure_datetime"`
	CremationDatetime string `json:"cremation_datetime"`
}

// Normalized returns a copy with every empty field replaced by the explicit
// missing-value placeholder. Called once before delivery; stored records keep
// the raw (possibly empty) values.
func (f NoticeFields) Normalized() NoticeFields {
	fill := func(s string) string {
		if s == "" {
			return missingFieldPlaceholder
		}
		return s
	}
	return NoticeFields{
		Name:              fill(f.Name),
		BirthDate:         fill(f.BirthDate),
		Residence:         fill(f.Residence),
		DeathDatetime:     fill(f.DeathDatetime),
		DeathPlace:        fill(f.DeathPlace),
		FuneralSchedule:   fill(f.FuneralSchedule),
		FuneralPlace:      fill(f.FuneralPlace),
		DepartureDatetime: fill(f.DepartureDatetime),
		CremationDatetime: fill(f.CremationDatetime),
	}
}
