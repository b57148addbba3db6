// Package model defines the lead record shared across the extraction
// pipeline and the output writer.
package model

import (
	"time"
)

// leadTimeLayout matches the CRM import format for "Date Added".
const leadTimeLayout = "2006-01-02 15:04"

// Lead is one extracted business-contact record. JSON keys match the CRM
// import schema exactly, including the spaced keys.
type Lead struct {
	Business  string `json:"Business"`
	Name      string `json:"Name"`
	Number    string `json:"Number"`
	Email     string `json:"Email"`
	Location  string `json:"Location"`
	Industry  string `json:"Industry"`
	CallNotes string `json:"Call Notes"`
	DateAdded string `json:"Date Added"`
	List      string `json:"List"`
}

// HasContact reports whether the lead carries at least one of a business
// name, phone, or email. Records with none are navigation/footer noise.
func (l Lead) HasContact() bool {
	return l.Business != "" || l.Number != "" || l.Email != ""
}

// Stamp fills the pass-through metadata fields on a batch of leads: the
// list-name tag and the creation timestamp in the CRM's timezone.
func Stamp(leads []Lead, listName string, now time.Time) {
	loc, err := time.LoadLocation("America/Los_Angeles")
	if err != nil {
		loc = time.UTC
	}
	stamp := now.In(loc).Format(leadTimeLayout)
	for i := range leads {
		leads[i].DateAdded = stamp
		leads[i].List = listName
	}
}
