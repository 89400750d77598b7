package kv

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func setupMock(t *testing.T, driver string) (*SQLStore, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewSQLStore(db, driver), mock
}

func TestSQLStore_Get_Success(t *testing.T) {
	store, mock := setupMock(t, DriverPostgres)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT value FROM kv WHERE key = $1`)).
		WithArgs("@userData").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(`{"token":"t"}`))

	got, err := store.Get(context.Background(), "@userData")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(got) != `{"token":"t"}` {
		t.Errorf("Get = %q", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestSQLStore_Get_NotFound(t *testing.T) {
	store, mock := setupMock(t, DriverPostgres)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT value FROM kv WHERE key = $1`)).
		WithArgs("@animals").
		WillReturnRows(sqlmock.NewRows([]string{"value"}))

	_, err := store.Get(context.Background(), "@animals")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSQLStore_Get_Error(t *testing.T) {
	store, mock := setupMock(t, DriverPostgres)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT value FROM kv WHERE key = $1`)).
		WithArgs("@animals").
		WillReturnError(errors.New("conn reset"))

	_, err := store.Get(context.Background(), "@animals")
	if err == nil || errors.Is(err, ErrNotFound) {
		t.Errorf("expected query error, got %v", err)
	}
}

func TestSQLStore_Set(t *testing.T) {
	store, mock := setupMock(t, DriverPostgres)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO kv (key, value, updated_at) VALUES ($1, $2, $3)`)).
		WithArgs("@animals", "[]", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := store.Set(context.Background(), "@animals", []byte("[]")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestSQLStore_Set_SQLitePlaceholders(t *testing.T) {
	store, mock := setupMock(t, DriverSQLite)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)`)).
		WithArgs("@animals", "[]", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := store.Set(context.Background(), "@animals", []byte("[]")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestSQLStore_Set_Error(t *testing.T) {
	store, mock := setupMock(t, DriverPostgres)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO kv`)).
		WillReturnError(errors.New("disk full"))

	err := store.Set(context.Background(), "@animals", []byte("[]"))
	if err == nil || !regexp.MustCompile(`kv set @animals`).MatchString(err.Error()) {
		t.Errorf("expected wrapped set error, got %v", err)
	}
}

func TestSQLStore_Delete(t *testing.T) {
	store, mock := setupMock(t, DriverPostgres)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM kv WHERE key = $1`)).
		WithArgs("@userData").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := store.Delete(context.Background(), "@userData"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}
