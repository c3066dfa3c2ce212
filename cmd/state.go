package cmd

import (
	"io/ioutil"
	"os"

	"github.com/luma/shavar/storage"
)

// loadState restores store from path. A missing file leaves it empty.
func loadState(store storage.Store, path string) error {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	return store.Restore(data)
}

func saveState(store storage.Store, path string) error {
	data, err := store.Backup()
	if err != nil {
		return err
	}

	return ioutil.WriteFile(path, data, 0640)
}
