package database

import (
	"testing"

	"yatube/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusAndReset(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.Create(&models.User{Username: "leo", Password: "x"}).Error)

	status, err := Status(db)
	require.NoError(t, err)
	require.Len(t, status, len(PersistentModels()))
	for _, st := range status {
		assert.True(t, st.Exists, st.Table)
		assert.Contains(t, st.Columns, "id", st.Table)
	}
	assert.Equal(t, "users", status[0].Table)

	require.NoError(t, Reset(db))
	var n int64
	require.NoError(t, db.Model(&models.User{}).Count(&n).Error)
	assert.Zero(t, n)
}
