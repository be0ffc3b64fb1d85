// Package session persists the client-local session: the auth token and user
// record under fixed keys, plus a mirror of the cart between invocations.
// On load it is the sole source of authentication truth.
package session

import (
	"encoding/json"

	bolt "go.etcd.io/bbolt"
)

const (
	bucketName = "session"
	keyToken   = "token"
	keyUser    = "user"
	keyCart    = "cart"
)

type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
}

type Store struct{ db *bolt.DB }

func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// SaveSession stores the token and user under their fixed keys.
func (s *Store) SaveSession(token string, u User) error {
	raw, err := json.Marshal(u)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		if err := b.Put([]byte(keyToken), []byte(token)); err != nil {
			return err
		}
		return b.Put([]byte(keyUser), raw)
	})
}

func (s *Store) Token() (string, bool) {
	var token string
	_ = s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket([]byte(bucketName)).Get([]byte(keyToken)); v != nil {
			token = string(v)
		}
		return nil
	})
	return token, token != ""
}

func (s *Store) User() (User, bool) {
	var u User
	found := false
	_ = s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket([]byte(bucketName)).Get([]byte(keyUser)); v != nil {
			found = json.Unmarshal(v, &u) == nil
		}
		return nil
	})
	return u, found
}

func (s *Store) Authenticated() bool {
	_, ok := s.Token()
	return ok
}

// Clear tears the session down at logout: token, user and cart mirror.
func (s *Store) Clear() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		for _, k := range []string{keyToken, keyUser, keyCart} {
			if err := b.Delete([]byte(k)); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) SaveCart(data []byte) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketName)).Put([]byte(keyCart), data)
	})
}

func (s *Store) Cart() ([]byte, bool) {
	var data []byte
	_ = s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket([]byte(bucketName)).Get([]byte(keyCart)); v != nil {
			data = append([]byte(nil), v...)
		}
		return nil
	})
	return data, data != nil
}
