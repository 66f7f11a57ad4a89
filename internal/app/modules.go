package app

import (
	"github.com/specialistvlad/boxwire/internal/registry"
	"github.com/specialistvlad/boxwire/modules/arithmetic"
	"github.com/specialistvlad/boxwire/modules/dataflow"
	"github.com/specialistvlad/boxwire/modules/debug"
	"github.com/specialistvlad/boxwire/modules/httprequest"
	"github.com/specialistvlad/boxwire/modules/primitiveio"
	"github.com/specialistvlad/boxwire/modules/system"
)

// coreModules is the definitive list of all box modules that are compiled
// into the boxwire binary.
var coreModules = []registry.Module{
	&arithmetic.Module{},
	&primitiveio.Module{},
	&dataflow.Module{},
	&debug.Module{},
	&httprequest.Module{},
	&system.Module{},
}
