// Package artifact provides access to the concrete locations a scope loads
// units and resources from.
//
// # Overview
//
// Source resolution turns textual source specifications into artifact
// locations (URLs). This package opens those locations and answers two
// questions for each of them: does a path exist, and what are its bytes.
//
// Supported locations:
//
//   - Directories: file URLs ending in "/" ("file:///opt/app/classes/")
//   - Archives: file URLs naming a zip or jar file ("file:///opt/app/lib/core.jar")
//   - Remote bases: http and https URLs ending in "/", fetched through an
//     [httputil.Client]; remote archives are downloaded once and read in memory
//   - Bundles: "bundle://name/dir/" locations backed by an [io/fs.FS]
//     registered with the [Opener]
//
// # Units
//
// A unit name is a dotted symbolic name such as "app.core.Main". Its path
// inside a location is derived by [UnitPath]: dots become slashes and the
// ".unit" extension is appended ("app/core/Main.unit"). Resource names are
// plain slash-separated paths and are used verbatim.
//
// # Ownership
//
// Archives hold open file handles. A [Set] owns every source it was built
// from and releases them on [Set.Close].
package artifact
