package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	role, err := ParseRole("ADMIN")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, role)

	_, err = ParseRole("admin")
	assert.Error(t, err)
	_, err = ParseRole("")
	assert.Error(t, err)
}

func TestRole_JSON(t *testing.T) {
	out, err := json.Marshal(map[string]Role{"role": RoleUser})
	require.NoError(t, err)
	assert.JSONEq(t, `{"role":"USER"}`, string(out))

	var in struct{ Role Role }
	require.NoError(t, json.Unmarshal([]byte(`{"Role":"ADMIN"}`), &in))
	assert.Equal(t, RoleAdmin, in.Role)

	_, err = json.Marshal(Role(0))
	assert.Error(t, err)
	assert.False(t, Role(7).Valid())
}

func TestMember_HasRefreshToken(t *testing.T) {
	token := "abc"
	m := &Member{RefreshToken: &token}
	assert.True(t, m.HasRefreshToken("abc"))
	assert.False(t, m.HasRefreshToken("abd"))
	assert.False(t, m.HasRefreshToken(""))
	assert.False(t, (&Member{}).HasRefreshToken("abc"))

	var nilMember *Member
	assert.False(t, nilMember.HasRefreshToken("abc"))
}
