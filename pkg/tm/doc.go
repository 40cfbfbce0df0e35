// Package tm provides translation memories: persistent maps from source
// unit text to translated text per language, used as the translation
// source of a merge run.
//
// Two backends are available. SQLite (modernc.org/sqlite, schema managed by
// goose migrations embedded in the binary) suits a single machine:
//
//	mem, err := tm.OpenSQLite(ctx, "memory.db")
//	if err != nil {
//		return err
//	}
//	defer mem.Close()
//	n, err := tm.Import(ctx, mem, "de", cat)
//
// Redis shares one memory between build machines:
//
//	mem, err := tm.OpenRedis(ctx, "redis://localhost:6379/0", tm.WithPrefix("docs"))
//
// Lookup adapts any Memory to catalog.Lookup for the merge engine.
package tm
