package mongodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/ukane-philemon/mentorship/internal/admin"
	"github.com/ukane-philemon/mentorship/internal/db"
	"github.com/ukane-philemon/mentorship/internal/mentor"
	"github.com/ukane-philemon/mentorship/internal/student"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Check that *MongoDB implements db.Transactor.
var _ db.Transactor = (*MongoDB)(nil)

// MongoDB owns the client connection and the repositories built on it.
type MongoDB struct {
	db           *mongo.Database
	transactions bool

	Students *student.StudentRepository
	Mentors  *mentor.MentorRepository
	Admins   *admin.AdminRepository
}

// New connects to a mongo database, creates the unique name indexes and
// returns a new instance of *MongoDB. Set transactions to false when the
// server is a standalone instance without replica set support.
func New(ctx context.Context, dbName string, connectionURL string, transactions bool) (*MongoDB, error) {
	if connectionURL == "" {
		return nil, errors.New("missing mongodb database connection URL")
	}

	if dbName == "" {
		return nil, errors.New("database name is required")
	}

	// Set server API version for the client. Nested documents in pass-through
	// fields decode as maps so they serialize back to plain JSON objects.
	serverAPI := options.ServerAPI(options.ServerAPIVersion1)
	opts := options.Client().
		ApplyURI(connectionURL).
		SetServerAPIOptions(serverAPI).
		SetBSONOptions(&options.BSONOptions{DefaultDocumentM: true})
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo.Connect error: %w", err)
	}

	err = client.Ping(ctx, readpref.Primary())
	if err != nil {
		return nil, fmt.Errorf("client.Ping error: %w", err)
	}

	log.Info("Database has been connected and pinged successfully", "db", dbName, "transactions", transactions)

	database := client.Database(dbName)
	mdb := &MongoDB{
		db:           database,
		transactions: transactions,
	}

	if mdb.Students, err = student.NewRepository(ctx, database); err != nil {
		return nil, err
	}
	if mdb.Mentors, err = mentor.NewRepository(ctx, database); err != nil {
		return nil, err
	}
	if mdb.Admins, err = admin.NewRepository(ctx, database); err != nil {
		return nil, err
	}

	return mdb, nil
}

// WithTransaction implements db.Transactor. fn may be called more than once
// if the server asks for the transaction to be retried.
func (mdb *MongoDB) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if !mdb.transactions {
		return fn(ctx)
	}

	session, err := mdb.db.Client().StartSession()
	if err != nil {
		return fmt.Errorf("db.Client().StartSession error: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		return nil, fn(sessCtx)
	})
	return err
}

// Shutdown attempts to shutdown the database.
func (mdb *MongoDB) Shutdown(ctx context.Context) error {
	client := mdb.db.Client()
	err := client.Disconnect(ctx)
	if err != nil {
		return fmt.Errorf("client.Disconnect error: %w", err)
	}

	log.Info("Database has been shutdown successfully")

	return nil
}
