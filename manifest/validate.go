package manifest

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// schema constrains the decoded manifest.
const schema = `close({
	project: {
		name:  string
		entry: string & =~"^[^/].*$"
	}
	eval: {
		"max-call-depth": int & >=1 & <=1024
		"max-iterations": int & >=1
		trace:            bool
		memoize:          bool
	}
	log: {
		verbosity: int & >=-1 & <=4
		file:      string
	}
})`

// Validate checks m against the manifest schema.
func Validate(m *Manifest) error {
	ctx := cuecontext.New()
	s := ctx.CompileString(schema, cue.Filename("folio.cue"))
	if err := s.Err(); err != nil {
		panic(fmt.Sprintf("manifest: bad schema: %v", err))
	}
	v := ctx.Encode(m)
	if err := v.Err(); err != nil {
		return err
	}
	if err := s.Unify(v).Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("invalid manifest: %w", err)
	}
	return nil
}
