package databases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/pulseguard/hypertension-api/databases"
	"github.com/pulseguard/hypertension-api/databases/mocks"
	"github.com/pulseguard/hypertension-api/models"
)

func TestUserDatabase_FindOneDecodeError(t *testing.T) {
	db := &mocks.DatabaseHelper{}
	coll := &mocks.CollectionHelper{}
	single := &mocks.SingleResultHelper{}

	single.On("Decode", mock.Anything).Return(errors.New("mocked-error"))
	coll.On("FindOne", mock.Anything, mock.Anything).Return(single)
	db.On("Collection", "users").Return(coll)

	userDB := databases.NewUserDatabase(db)
	user, err := userDB.FindOne(context.Background(), bson.M{"subjectId": "sub-1"})

	assert.Nil(t, user)
	assert.EqualError(t, err, "mocked-error")
}

func TestUserDatabase_FindDecodesUsers(t *testing.T) {
	db := &mocks.DatabaseHelper{}
	coll := &mocks.CollectionHelper{}
	cursor := &mocks.CursorHelper{}

	cursor.On("Decode", mock.Anything).Run(func(args mock.Arguments) {
		users := args.Get(0).(*[]models.User)
		*users = []models.User{{SubjectID: "sub-1", Role: models.RolePatient}}
	}).Return(nil)
	coll.On("Find", mock.Anything, mock.Anything).Return(cursor, nil)
	db.On("Collection", "users").Return(coll)

	userDB := databases.NewUserDatabase(db)
	users, err := userDB.Find(context.Background(), bson.M{"role": models.RolePatient})

	assert.NoError(t, err)
	if assert.Len(t, users, 1) {
		assert.Equal(t, "sub-1", users[0].SubjectID)
	}
}

func TestFitStagingDatabase_RemoveUsesCompoundKey(t *testing.T) {
	db := &mocks.DatabaseHelper{}
	coll := &mocks.CollectionHelper{}

	coll.On("DeleteOne", mock.Anything, bson.M{"subjectId": "sub-1", "date": "2026-08-27"}).Return(nil)
	db.On("Collection", "fit_staging").Return(coll)

	stagingDB := databases.NewFitStagingDatabase(db)
	err := stagingDB.Remove(context.Background(), "sub-1", "2026-08-27")

	assert.NoError(t, err)
	coll.AssertExpectations(t)
}
