package littlefs

import (
	"github.com/nuln/lfsdfs"
	"github.com/nuln/lfsdfs/dfs"
)

// toNativeFlags converts dispatcher open flags to engine flags. The result
// always carries ORdOnly. A read-write request sets ORdOnly and OWrOnly
// rather than ORdWr, which the engine treats as the same bit pattern.
func toNativeFlags(flags int) lfsdfs.Flag {
	nf := lfsdfs.ORdOnly

	if flags&dfs.ORdWr != 0 {
		nf |= lfsdfs.ORdOnly | lfsdfs.OWrOnly
	}
	if flags&dfs.OWrOnly != 0 {
		nf |= lfsdfs.OWrOnly
	}
	if flags&dfs.OCreat != 0 {
		nf |= lfsdfs.OCreat
	}
	if flags&dfs.OExcl != 0 {
		nf |= lfsdfs.OExcl
	}
	if flags&dfs.OTrunc != 0 {
		nf |= lfsdfs.OTrunc
	}
	if flags&dfs.OAppend != 0 {
		nf |= lfsdfs.OAppend
	}
	return nf
}
