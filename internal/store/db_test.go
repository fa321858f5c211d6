package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyProfileData(t *testing.T) {
	u := &User{ID: 1, Name: "Ada", Email: "ada@example.com"}
	applyProfileData(u, `{"phone":"+4915123","location":"Berlin","skills":["Go","SQL"]}`)

	assert.Equal(t, "+4915123", u.Phone)
	assert.Equal(t, "Berlin", u.Location)
	assert.Equal(t, []string{"Go", "SQL"}, u.Skills)
}

func TestApplyProfileDataColumnWins(t *testing.T) {
	u := &User{ID: 1, Phone: "+49000"}
	applyProfileData(u, `{"phone":"+4915123"}`)
	assert.Equal(t, "+49000", u.Phone)
}

func TestApplyProfileDataIgnoresBadJSON(t *testing.T) {
	u := &User{ID: 1, Phone: "+49000"}
	applyProfileData(u, `{not json`)
	assert.Equal(t, "+49000", u.Phone)
	assert.Empty(t, u.Skills)
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, 20, clampLimit(0, 20, 200))
	assert.Equal(t, 20, clampLimit(-5, 20, 200))
	assert.Equal(t, 200, clampLimit(500, 20, 200))
	assert.Equal(t, 50, clampLimit(50, 20, 200))
}
