package migration

import (
	"errors"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"coursekeeper/internal/app/server/config"
)

type MockMigrator struct {
	mock.Mock
}

func (m *MockMigrator) Up() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockMigrator) Version() (uint, bool, error) {
	args := m.Called()
	return args.Get(0).(uint), args.Bool(1), args.Error(2)
}

func (m *MockMigrator) Close() (error, error) {
	args := m.Called()
	return args.Error(0), args.Error(1)
}

func testConfig() *config.Config {
	return &config.Config{
		DB: config.DBConfig{
			DatabaseURI: "postgres://localhost/courses",
			Migrations:  "migrations",
		},
	}
}

func engineFor(m Migrator) MigrationEngine {
	return func(string, string) (Migrator, error) {
		return m, nil
	}
}

func TestMigration_Up_Success(t *testing.T) {
	mockM := new(MockMigrator)
	mockM.On("Up").Return(nil)
	mockM.On("Version").Return(uint(1), false, nil)
	mockM.On("Close").Return(nil, nil)

	var gotSource, gotDB string
	engine := func(source, db string) (Migrator, error) {
		gotSource, gotDB = source, db
		return mockM, nil
	}

	mg := NewMigration(testConfig(), engine)
	err := mg.Up()

	require.NoError(t, err)
	assert.Equal(t, "file://migrations", gotSource)
	assert.Equal(t, "postgres://localhost/courses", gotDB)
	assert.Equal(t, uint(1), mg.Version())
	mockM.AssertExpectations(t)
}

func TestMigration_Up_NoChange(t *testing.T) {
	mockM := new(MockMigrator)
	mockM.On("Up").Return(migrate.ErrNoChange)
	mockM.On("Version").Return(uint(1), false, nil)
	mockM.On("Close").Return(nil, nil)

	mg := NewMigration(testConfig(), engineFor(mockM))

	assert.NoError(t, mg.Up())
	assert.Equal(t, uint(1), mg.Version())
}

func TestMigration_Up_EmptySource(t *testing.T) {
	mockM := new(MockMigrator)
	mockM.On("Up").Return(migrate.ErrNoChange)
	mockM.On("Version").Return(uint(0), false, migrate.ErrNilVersion)
	mockM.On("Close").Return(nil, nil)

	mg := NewMigration(testConfig(), engineFor(mockM))

	assert.NoError(t, mg.Up())
	assert.Zero(t, mg.Version())
}

func TestMigration_Up_Dirty(t *testing.T) {
	mockM := new(MockMigrator)
	mockM.On("Up").Return(nil)
	mockM.On("Version").Return(uint(1), true, nil)
	mockM.On("Close").Return(nil, nil)

	err := NewMigration(testConfig(), engineFor(mockM)).Up()

	assert.ErrorContains(t, err, "version 1 is dirty")
}

func TestMigration_Up_Failure(t *testing.T) {
	mockM := new(MockMigrator)
	failure := errors.New("syntax error at or near \"TABL\"")
	mockM.On("Up").Return(failure)
	mockM.On("Close").Return(nil, nil)

	err := NewMigration(testConfig(), engineFor(mockM)).Up()

	assert.ErrorIs(t, err, failure)
	mockM.AssertExpectations(t)
	mockM.AssertNotCalled(t, "Version")
}

func TestMigration_Up_CloseError(t *testing.T) {
	mockM := new(MockMigrator)
	closeErr := errors.New("connection reset")
	mockM.On("Up").Return(nil)
	mockM.On("Version").Return(uint(1), false, nil)
	mockM.On("Close").Return(nil, closeErr)

	err := NewMigration(testConfig(), engineFor(mockM)).Up()

	assert.ErrorIs(t, err, closeErr)
	assert.ErrorContains(t, err, "database close")
}

func TestMigration_Up_EngineError(t *testing.T) {
	engine := func(string, string) (Migrator, error) {
		return nil, errors.New("unknown driver postgresql")
	}

	err := NewMigration(testConfig(), engine).Up()

	assert.ErrorContains(t, err, "migration engine: unknown driver postgresql")
}
