// Package database opens the configured document-store backend.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	_ "github.com/go-sql-driver/mysql"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"google.golang.org/api/option"

	"github.com/automarket/marketplace-api/internal/config"
	"github.com/automarket/marketplace-api/internal/docstore"
)

const connectTimeout = 5 * time.Second

// OpenStore connects the backend named by cfg.Driver and returns it behind
// the docstore.Store interface.  The caller owns Close.
func OpenStore(ctx context.Context, cfg config.StoreConfig) (docstore.Store, error) {
	switch strings.ToLower(cfg.Driver) {
	case "memory", "":
		return docstore.NewMemory(), nil
	case "firestore":
		client, err := OpenFirestore(ctx, cfg.FirestoreProjectID, cfg.CredentialsFile)
		if err != nil {
			return nil, err
		}
		return docstore.NewFirestore(client), nil
	case "mongo":
		client, err := OpenMongo(ctx, cfg.MongoURI)
		if err != nil {
			return nil, err
		}
		return docstore.NewMongo(client, cfg.MongoDatabase), nil
	case "mysql":
		db, err := OpenMySQL(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
		if err != nil {
			return nil, err
		}
		store := docstore.NewMySQL(db)
		if err := store.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("create documents table: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown DOCSTORE_DRIVER %q", cfg.Driver)
	}
}

// OpenFirestore creates a Firestore client.  Without a credentials file the
// client falls back to application default credentials.
func OpenFirestore(ctx context.Context, projectID, credentialsFile string) (*firestore.Client, error) {
	if projectID == "" {
		return nil, fmt.Errorf("FIRESTORE_PROJECT_ID is required for the firestore driver")
	}
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("firestore client: %w", err)
	}
	return client, nil
}

// OpenMongo connects to MongoDB and verifies the connection.
func OpenMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return client, nil
}

// OpenMySQL connects to MySQL and verifies the connection.
func OpenMySQL(user, pass, host, port, name string) (*sql.DB, error) {
	auth := user
	if pass != "" {
		auth = fmt.Sprintf("%s:%s", user, pass)
	}
	// parseTime=true -> DATETIME -> time.Time | loc=UTC keeps times consistent
	dsn := fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
		auth, host, port, name)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	// Pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
