package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLead_JSONKeys(t *testing.T) {
	t.Parallel()
	lead := Lead{
		Business:  "American Kolache",
		Number:    "15715207858",
		Email:     "info@americankolache.com",
		Location:  "44260 Ice Rink Plaza, Suite 117, Ashburn, VA 20147",
		DateAdded: "2026-08-29 09:30",
		List:      "Ashburn Push",
	}

	data, err := json.Marshal(lead)
	require.NoError(t, err)

	var m map[string]string
	require.NoError(t, json.Unmarshal(data, &m))

	// The CRM import schema uses spaced keys; all nine must be present.
	for _, key := range []string{
		"Business", "Name", "Number", "Email", "Location",
		"Industry", "Call Notes", "Date Added", "List",
	} {
		assert.Contains(t, m, key)
	}
	assert.Equal(t, "American Kolache", m["Business"])
	assert.Equal(t, "Ashburn Push", m["List"])
}

func TestLead_HasContact(t *testing.T) {
	t.Parallel()
	assert.True(t, Lead{Business: "Acme"}.HasContact())
	assert.True(t, Lead{Number: "5715207858"}.HasContact())
	assert.True(t, Lead{Email: "a@b.co"}.HasContact())
	assert.False(t, Lead{Location: "Ashburn, VA"}.HasContact())
}

func TestStamp(t *testing.T) {
	t.Parallel()
	leads := []Lead{
		{Business: "Acme"},
		{Business: "Bravo"},
	}

	// 17:00 UTC is 10:00 in Los Angeles during daylight saving.
	now := time.Date(2026, 8, 29, 17, 0, 0, 0, time.UTC)
	Stamp(leads, "Ashburn Push", now)

	for _, l := range leads {
		assert.Equal(t, "2026-08-29 10:00", l.DateAdded)
		assert.Equal(t, "Ashburn Push", l.List)
	}
}
