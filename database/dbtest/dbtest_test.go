package dbtest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"studytrack/models"
)

func TestNewMigrates(t *testing.T) {
	instance := New(t)

	for _, table := range []interface{}{
		&models.User{},
		&models.PlaylistSource{},
		&models.PlaylistItem{},
		&models.StudyPlan{},
		&models.CompletedDay{},
		&models.MissedDay{},
	} {
		assert.True(t, instance.Db.Migrator().HasTable(table))
	}
	assert.True(t, instance.Db.Migrator().HasIndex(&models.CompletedDay{}, "idx_completed_plan_day"))
	assert.NoError(t, instance.Ping(context.Background()))
}

func TestNewIsPrivatePerCall(t *testing.T) {
	a, b := New(t), New(t)
	assert.NoError(t, a.Db.Create(&models.User{Name: "Asha", Email: "asha@example.com", Password: "hash"}).Error)

	var count int64
	assert.NoError(t, b.Db.Model(&models.User{}).Count(&count).Error)
	assert.Zero(t, count)
}
