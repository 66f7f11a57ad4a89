// Package registry maps box type ids to constructors.
//
// Box types are contributed by modules. Each module registers its types
// once at startup; the registry is then read-only and is used to build
// boxes when a program is restored or the editor adds one.
//
// Type ids have the form "category/name", for example "arithmetic/add".
package registry
