package domain

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMonth(t *testing.T) {
	month, err := ParseMonth("2026-03")
	require.NoError(t, err)
	assert.Equal(t, 2026, month.Year)
	assert.Equal(t, time.March, month.Month)
	assert.Equal(t, "2026-03", month.String())

	for _, bad := range []string{"", "2026", "2026-13", "03-2026", "2026-03-02"} {
		_, err := ParseMonth(bad)
		assert.Error(t, err, "expected %q to be rejected", bad)
	}
}

func TestParseDate(t *testing.T) {
	day, err := ParseDate("2026-03-02")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), day)

	for _, bad := range []string{"", "02.03.2026", "2026-03", "2026-02-30"} {
		_, err := ParseDate(bad)
		assert.Error(t, err, "expected %q to be rejected", bad)
	}
}

func TestMonthNext(t *testing.T) {
	march := Month{Year: 2026, Month: time.March}
	assert.Equal(t, Month{Year: 2026, Month: time.April}, march.Next())

	december := Month{Year: 2026, Month: time.December}
	assert.Equal(t, Month{Year: 2027, Month: time.January}, december.Next())
}

func TestMonthOf(t *testing.T) {
	assert.Equal(t, Month{Year: 2026, Month: time.March},
		MonthOf(time.Date(2026, 3, 31, 23, 59, 0, 0, time.UTC)))
	assert.True(t, Month{}.IsZero())
	assert.False(t, Month{Year: 2026, Month: time.March}.IsZero())
}

func TestMonthJSONRoundTrip(t *testing.T) {
	type payload struct {
		Month Month `json:"month"`
	}

	raw, err := json.Marshal(payload{Month: Month{Year: 2026, Month: time.March}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"month":"2026-03"}`, string(raw))

	var decoded payload
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, Month{Year: 2026, Month: time.March}, decoded.Month)

	assert.Error(t, json.Unmarshal([]byte(`{"month":"march"}`), &decoded))
}

func TestParseIDs(t *testing.T) {
	raw := uuid.NewString()

	entryID, err := ParseEntryID(raw)
	require.NoError(t, err)
	assert.Equal(t, raw, entryID.String())
	assert.False(t, entryID.IsNil())
	assert.True(t, EntryID{}.IsNil())

	_, err = ParseEntryID("not-a-uuid")
	assert.ErrorContains(t, err, "invalid entry id")

	_, err = ParseTenantID("")
	assert.ErrorContains(t, err, "invalid tenant id")
}

func TestIDJSONRoundTrip(t *testing.T) {
	type payload struct {
		TenantID TenantID `json:"tenant_id"`
		MemberID MemberID `json:"member_id"`
		EntryID  EntryID  `json:"entry_id"`
	}

	in := payload{
		TenantID: TenantID(uuid.New()),
		MemberID: MemberID(uuid.New()),
		EntryID:  EntryID(uuid.New()),
	}

	raw, err := json.Marshal(in)
	require.NoError(t, err)

	// IDs encode as canonical UUID strings, not byte arrays.
	assert.JSONEq(t, fmt.Sprintf(
		`{"tenant_id":%q,"member_id":%q,"entry_id":%q}`,
		in.TenantID.String(), in.MemberID.String(), in.EntryID.String(),
	), string(raw))

	var out payload
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, in, out)

	var bad payload
	assert.Error(t, json.Unmarshal([]byte(`{"entry_id":"not-a-uuid"}`), &bad))
}
