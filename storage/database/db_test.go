package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Umairism/Teachers-Club/core"
)

func TestOpen(t *testing.T) {
	conf := core.NewTestConfig()
	db, err := Open(conf)
	require.NoError(t, err)

	var one int
	require.NoError(t, db.Raw("SELECT 1").Scan(&one).Error)
	assert.Equal(t, 1, one)

	require.NoError(t, Close(db))
	var count int64
	err = db.Table("sqlite_master").Count(&count).Error
	assert.True(t, core.IsShutdown(err), "closed pool errors must be unrecoverable, got %v", err)

	conf.Database.Engine = "mongo"
	_, err = Open(conf)
	assert.EqualError(t, err, `unknown database engine "mongo"`)
}

func TestCreateIfNotExist_sqlite(t *testing.T) {
	assert.NoError(t, CreateIfNotExist(core.NewTestConfig()))
}

func Test_postgresURL(t *testing.T) {
	conf := core.NewTestConfig()
	conf.Database.Host = "db"
	conf.Database.Port = "5432"
	conf.Database.User = "club"
	conf.Database.Password = "s3cret"
	conf.Database.AdminUser = "postgres"
	conf.Database.AdminPassword = "root"

	assert.Equal(t, "postgres://club:s3cret@db:5432/club?sslmode=require&timezone=utc", postgresURL("club", false, conf))

	conf.Database.DisableTLS = true
	assert.Equal(t, "postgres://postgres:root@db:5432/postgres?sslmode=disable&timezone=utc", postgresURL("postgres", true, conf))
}
