package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type eventPatchBody struct {
	Name    Optional[string] `json:"name"`
	EndDate Optional[Date]   `json:"end_date"`
	Seats   Optional[int]    `json:"seats"`
}

func TestOptionalDistinguishesAbsentNullAndValue(t *testing.T) {
	var p eventPatchBody
	require.NoError(t, json.Unmarshal([]byte(`{"name":"Reunion","end_date":null}`), &p))

	assert.True(t, p.Name.IsSet())
	assert.False(t, p.Name.IsNull())
	assert.Equal(t, "Reunion", p.Name.SQLValue())

	assert.True(t, p.EndDate.IsSet())
	assert.True(t, p.EndDate.IsNull())
	assert.Nil(t, p.EndDate.SQLValue())

	assert.False(t, p.Seats.IsSet())
	assert.False(t, p.Seats.IsNull())
}

func TestOptionalRejectsWrongType(t *testing.T) {
	var p eventPatchBody
	assert.Error(t, json.Unmarshal([]byte(`{"seats":"many"}`), &p))
	assert.Error(t, json.Unmarshal([]byte(`{"end_date":"tomorrow"}`), &p))
}

func TestOptionalMarshal(t *testing.T) {
	out, err := json.Marshal(eventPatchBody{Name: Some("x"), EndDate: Null[Date]()})
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"x","end_date":null,"seats":null}`, string(out))
}

func TestChanges(t *testing.T) {
	changes := Changes{{Column: "name", Value: "x"}}.With("photo_path", "family_photos/a.jpg")
	assert.Equal(t, []string{"name", "photo_path"}, changes.Columns())
	assert.Empty(t, Changes{}.Columns())
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate(" 2024-02-29 ")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", d.String())

	d, err = ParseDate("2024-02-29T23:30:00+02:00")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", d.String())

	_, err = ParseDate("29/02/2024")
	assert.Error(t, err)

	var zero Date
	raw, err := json.Marshal(zero)
	require.NoError(t, err)
	assert.Equal(t, "null", string(raw))
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("name", "is required")
	err.Add("amount", "must be greater than 0")
	assert.Equal(t, "validation failed: amount: must be greater than 0; name: is required", err.Error())
}

func TestMessageThreadAccess(t *testing.T) {
	thread := &MessageThread{
		Message:    Message{ID: "m", SenderID: "alice"},
		Recipients: []*MessageRecipient{{RecipientID: "bob"}},
	}

	assert.True(t, thread.CanAccess("alice"))
	assert.True(t, thread.CanAccess("bob"))
	assert.False(t, thread.CanAccess("carol"))
	assert.Nil(t, thread.Recipient("alice"))
	assert.NotNil(t, thread.Recipient("bob"))
}

func TestMemberPatchSelfEditable(t *testing.T) {
	assert.True(t, MemberPatch{FullName: Some("A"), Phone: Null[string]()}.SelfEditable())
	assert.False(t, MemberPatch{Role: Some(RoleAdmin)}.SelfEditable())
	assert.False(t, MemberPatch{IsActive: Some(true)}.SelfEditable())
	assert.False(t, (*Actor)(nil).HasRole(RoleAdmin))
}

func TestOptionalValidatorValue(t *testing.T) {
	var absent Optional[int]
	assert.Nil(t, absent.ValidatorValue())
	assert.IsType(t, (*int)(nil), absent.ValidatorValue())

	assert.IsType(t, (*int)(nil), Null[int]().ValidatorValue())

	zero, ok := Some(0).ValidatorValue().(*int)
	require.True(t, ok)
	require.NotNil(t, zero)
	assert.Equal(t, 0, *zero)
}
