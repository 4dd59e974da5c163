package main

import (
	"fmt"
	"io"

	"github.com/ayusman/signbridge/internal/app"
)

// dictionaryOps are the one-shot custom dictionary flags. They run in the
// order import, add, remove, list and the process exits afterwards.
type dictionaryOps struct {
	importPath string
	add        string
	remove     string
	list       bool
}

func (o dictionaryOps) requested() bool {
	return o.importPath != "" || o.add != "" || o.remove != "" || o.list
}

func (o dictionaryOps) run(w io.Writer, a *app.App) error {
	if o.importPath != "" {
		n, err := a.ImportDictionary(o.importPath)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "imported %d new words\n", n)
	}
	if o.add != "" {
		word, err := a.AddWord(o.add)
		if err != nil {
			return fmt.Errorf("add %q: %w", o.add, err)
		}
		fmt.Fprintf(w, "added %s\n", word)
	}
	if o.remove != "" {
		if err := a.RemoveWord(o.remove); err != nil {
			return fmt.Errorf("remove %q: %w", o.remove, err)
		}
		fmt.Fprintf(w, "removed %s\n", o.remove)
	}
	if o.list {
		words, err := a.Words()
		if err != nil {
			return err
		}
		for _, word := range words {
			fmt.Fprintln(w, word)
		}
	}
	return nil
}
