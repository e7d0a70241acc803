package service

import (
	"fmt"
	"os"
	"path/filepath"

	"facility-recon/internal/fileio"
	"facility-recon/internal/reconcile/model"
)

// LoadFile: чтение списка имён с диска (для CLI).
func LoadFile(path, source, column string, headerRow int) (model.NameList, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.NameList{}, model.NewInputFormatError(source, "cannot open "+path, err)
	}
	defer f.Close()

	t, err := fileio.ReadTable(f, path, headerRow)
	if err != nil {
		return model.NameList{}, model.NewInputFormatError(source,
			fmt.Sprintf("cannot read %s", filepath.Base(path)), err)
	}
	return NewNameList(t, source, column)
}
