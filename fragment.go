package relsql

import "github.com/oarkflow/relsql/querycache"

// Fragment names one query's SQL source: either literal text supplied
// inline, or the name of a file to resolve against the DB's template search
// roots. Static ("<name>.sql") sources are read once and reused verbatim;
// dynamic ("<name>.sql.tmpl") sources, and any inline source explicitly
// marked dynamic, are rendered through the template engine on every
// execution.
type Fragment struct {
	inline     string
	file       string
	forceKind  querycache.Kind
	forcedKind bool
}

// SQL declares an inline, static query: no templating is performed, it is
// sent to the driver as written.
func SQL(source string) Fragment {
	return Fragment{inline: source, forceKind: querycache.Static, forcedKind: true}
}

// Template declares an inline, dynamic query: rendered through the
// template engine on every execution.
func Template(source string) Fragment {
	return Fragment{inline: source, forceKind: querycache.Dynamic, forcedKind: true}
}

// File declares a query loaded from name, resolved against the DB's
// template search roots and classified by its ".sql"/".sql.tmpl" suffix.
func File(name string) Fragment {
	return Fragment{file: name}
}

func (f Fragment) resolve(db *DB) (*querycache.Query, error) {
	if f.file != "" {
		return db.queries.GetOrCompileFile(f.file, func(name string) (string, error) {
			return db.loader.Read(name)
		})
	}
	kind := querycache.Static
	if f.forcedKind {
		kind = f.forceKind
	}
	return db.queries.GetOrCompileSource(f.inline, kind), nil
}
