package model

import (
	"encoding/gob"
	"io"
	"os"
	"path/filepath"

	"github.com/YuminosukeSato/examprep/pkg/errors"
)

// GobStore persists opaque objects with encoding/gob.
// Concrete types stored behind interfaces must be registered with gob.Register.
type GobStore struct{}

// Save はオブジェクトをファイルに保存する。親ディレクトリが無ければ作成する。
//
// 使用例:
//
//	var store model.GobStore
//	err := store.Save("artifact/preprocessor.gob", plan)
func (GobStore) Save(path string, obj interface{}) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.NewIOError("model.GobStore.Save", err)
	}

	// 書き込み途中のファイルを残さないよう一時ファイルからリネームする
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return errors.NewIOError("model.GobStore.Save", err)
	}
	defer os.Remove(tmp.Name())

	if err := SaveToWriter(obj, tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return errors.NewIOError("model.GobStore.Save", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.NewIOError("model.GobStore.Save", err)
	}
	return nil
}

// Load はファイルからオブジェクトを読み込む。obj はポインタでなければならない。
func (GobStore) Load(path string, obj interface{}) error {
	file, err := os.Open(path)
	if err != nil {
		return errors.NewIOError("model.GobStore.Load", err)
	}
	defer file.Close()

	return LoadFromReader(obj, file)
}

// SaveToWriter はオブジェクトをio.Writerに保存する
func SaveToWriter(obj interface{}, w io.Writer) error {
	if err := gob.NewEncoder(w).Encode(obj); err != nil {
		return errors.NewIOError("model.SaveToWriter", errors.Wrap(err, "failed to encode object"))
	}
	return nil
}

// LoadFromReader はio.Readerからオブジェクトを読み込む
func LoadFromReader(obj interface{}, r io.Reader) error {
	if err := gob.NewDecoder(r).Decode(obj); err != nil {
		return errors.NewIOError("model.LoadFromReader", errors.Wrap(err, "failed to decode object"))
	}
	return nil
}
