package database

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeMySQLDSN(t *testing.T) {
	cases := []struct {
		name, in, user, pass, want string
	}{
		{
			name: "native dsn untouched",
			in:   "root:pw@tcp(127.0.0.1:3306)/care?parseTime=true",
			want: "root:pw@tcp(127.0.0.1:3306)/care?parseTime=true",
		},
		{
			name: "url with defaults",
			in:   "mysql://root:pw@db:3306/care",
			want: "root:pw@tcp(db:3306)/care?charset=utf8mb4&parseTime=true",
		},
		{
			name: "jdbc params translated",
			in:   "jdbc:mysql://db:3306/care?useSSL=false&characterEncoding=utf8&serverTimezone=UTC&useUnicode=true",
			user: "app", pass: "secret",
			want: "app:secret@tcp(db:3306)/care?charset=utf8&loc=UTC&parseTime=true&tls=false",
		},
		{
			name: "query credentials",
			in:   "mysql://db:3306/care?user=u&password=p",
			want: "u:p@tcp(db:3306)/care?charset=utf8mb4&parseTime=true",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, normalizeMySQLDSN(tc.in, tc.user, tc.pass))
		})
	}
}

func TestWithSQLiteForeignKeys(t *testing.T) {
	assert.Equal(t, "file:x.db?_fk=1", withSQLiteForeignKeys("file:x.db"))
	assert.Equal(t, "file:x?mode=memory&_fk=1", withSQLiteForeignKeys("file:x?mode=memory"))
	assert.Equal(t, "file:x?_foreign_keys=on", withSQLiteForeignKeys("file:x?_foreign_keys=on"))
}

func TestNewGorm_UnsupportedDriver(t *testing.T) {
	_, err := NewGorm(Opts{Driver: "oracle"})
	assert.ErrorIs(t, err, ErrUnsupportedDriver)
}

type parent struct {
	ID   uint `gorm:"primaryKey"`
	Code string `gorm:"uniqueIndex;size:32"`
}

type child struct {
	ID       uint `gorm:"primaryKey"`
	ParentID uint
	Parent   *parent `gorm:"constraint:OnDelete:CASCADE"`
}

func TestNewGorm_SQLiteCascadeAndDuplicate(t *testing.T) {
	db, err := NewGorm(Opts{
		Driver:       "sqlite",
		DSN:          "file:" + uuid.NewString() + "?mode=memory&cache=shared",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
		LogLevel:     "silent",
	})
	require.NoError(t, err)
	require.NoError(t, Migrate(db, &parent{}, &child{}))

	p := parent{Code: "a"}
	require.NoError(t, db.Create(&p).Error)
	require.NoError(t, db.Create(&child{ParentID: p.ID}).Error)

	err = db.Create(&parent{Code: "a"}).Error
	assert.True(t, IsDuplicateKey(err))

	require.NoError(t, db.Delete(&parent{}, p.ID).Error)
	var n int64
	require.NoError(t, db.Model(&child{}).Count(&n).Error)
	assert.Zero(t, n)
}
