package model

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Store persists fitted estimators under a directory, one gob file per
// model name.
type Store struct {
	dir string
}

// envelope tags the concrete estimator type so Load can rebuild it without
// the caller knowing the algorithm.
type envelope struct {
	Algorithm string
	Tree      *DecisionTree
	Logistic  *LogisticRegression
}

// NewStore opens a model store rooted at dir, creating it if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating model dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Save writes the estimator under name, overwriting any previous version.
func (s *Store) Save(name string, est Estimator) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}

	var env envelope
	switch m := est.(type) {
	case *DecisionTree:
		env = envelope{Algorithm: "tree", Tree: m}
	case *LogisticRegression:
		env = envelope{Algorithm: "logistic", Logistic: m}
	default:
		return fmt.Errorf("cannot persist estimator of type %T", est)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating model file: %w", err)
	}
	defer f.Close()

	if err := gob.NewEncoder(f).Encode(env); err != nil {
		return fmt.Errorf("encoding model %s: %w", name, err)
	}
	return f.Close()
}

// Load reads a previously saved estimator by name.
func (s *Store) Load(name string) (Estimator, error) {
	path, err := s.path(name)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening model file: %w", err)
	}
	defer f.Close()

	var env envelope
	if err := gob.NewDecoder(f).Decode(&env); err != nil {
		return nil, fmt.Errorf("decoding model %s: %w", name, err)
	}

	switch env.Algorithm {
	case "tree":
		if env.Tree == nil {
			return nil, fmt.Errorf("model %s is tagged tree but holds none", name)
		}
		return env.Tree, nil
	case "logistic":
		if env.Logistic == nil {
			return nil, fmt.Errorf("model %s is tagged logistic but holds none", name)
		}
		return env.Logistic, nil
	}
	return nil, fmt.Errorf("model %s has unknown algorithm %q", name, env.Algorithm)
}

func (s *Store) path(name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("invalid model name %q", name)
	}
	return filepath.Join(s.dir, name+".gob"), nil
}
