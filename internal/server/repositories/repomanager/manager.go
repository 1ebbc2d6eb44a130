// Package repomanager groups repository constructors behind one interface so
// services can obtain repositories bound to either the pooled *sql.DB or an
// in-flight transaction.
package repomanager

import (
	"github.com/mkaranov/brospace/internal/dbx"
	"github.com/mkaranov/brospace/internal/server/repositories/moodentries"
	"github.com/mkaranov/brospace/internal/server/repositories/profiles"
	"github.com/mkaranov/brospace/internal/server/repositories/refreshtokens"
	"github.com/mkaranov/brospace/internal/server/repositories/users"
)

type RepositoryManager interface {
	Users(db dbx.DBTX) users.Repository
	Profiles(db dbx.DBTX) profiles.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	MoodEntries(db dbx.DBTX) moodentries.Repository
}
