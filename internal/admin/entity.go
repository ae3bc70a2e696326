package admin

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ukane-philemon/mentorship/internal/db"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"
)

const (
	// CollectionName is the mongodb collection that holds admin accounts.
	CollectionName = "admin"

	usernameKey = "username"
)

// errBadLogin is deliberately the same for unknown users and wrong passwords.
var errBadLogin = fmt.Errorf("%w: username or password is incorrect", db.ErrorInvalidRequest)

type Admin struct {
	ID             primitive.ObjectID `json:"_id" bson:"_id"`
	Username       string             `json:"username" bson:"username"`
	HashedPassword string             `json:"-" bson:"hashedPassword"`
	CreatedAt      int64              `json:"createdAt" bson:"createdAt"`
}

// NewAdmin validates the credentials and returns an *Admin with a bcrypt hash
// of password.
func NewAdmin(username, password string) (*Admin, error) {
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: missing username or password", db.ErrorInvalidRequest)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("bcrypt.GenerateFromPassword error: %w", err)
	}

	return &Admin{
		ID:             primitive.NewObjectID(),
		Username:       username,
		HashedPassword: string(passwordHash),
		CreatedAt:      time.Now().Unix(),
	}, nil
}

// CheckPassword returns the admin's ID if password matches.
func (a *Admin) CheckPassword(password string) (string, error) {
	err := bcrypt.CompareHashAndPassword([]byte(a.HashedPassword), []byte(password))
	if err != nil {
		return "", errBadLogin
	}
	return a.ID.Hex(), nil
}

// AdminRepository implements Repository.
type AdminRepository struct {
	adminCollection *mongo.Collection
}

// NewRepository creates a new instance of *AdminRepository.
func NewRepository(ctx context.Context, database *mongo.Database) (*AdminRepository, error) {
	adminCollectionIndex := mongo.IndexModel{
		Keys: bson.D{{
			Key:   usernameKey,
			Value: 1,
		}},
		Options: options.Index().SetUnique(true),
	}

	// Create a unique index on the admin collection.
	adminCollection := database.Collection(CollectionName)
	_, err := adminCollection.Indexes().CreateOne(ctx, adminCollectionIndex)
	if err != nil {
		return nil, fmt.Errorf("adminCollection.Indexes().CreateOne error: %w", err)
	}

	return &AdminRepository{
		adminCollection: adminCollection,
	}, nil
}

var _ Repository = (*AdminRepository)(nil)

// CreateAccount implements Repository.
func (ar *AdminRepository) CreateAccount(ctx context.Context, username, password string) (string, error) {
	adminInfo, err := NewAdmin(username, password)
	if err != nil {
		return "", err
	}

	_, err = ar.adminCollection.InsertOne(ctx, adminInfo)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", fmt.Errorf("%w: please try another username", ErrAccountExists)
		}
		return "", fmt.Errorf("adminCollection.InsertOne error: %w", err)
	}

	return adminInfo.ID.Hex(), nil
}

// LoginAccount implements Repository.
func (ar *AdminRepository) LoginAccount(ctx context.Context, username, password string) (string, error) {
	var admin *Admin
	err := ar.adminCollection.FindOne(ctx, bson.M{usernameKey: username}).Decode(&admin)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", errBadLogin
		}
		return "", fmt.Errorf("adminCollection.FindOne error: %w", err)
	}

	return admin.CheckPassword(password)
}
