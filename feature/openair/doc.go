// Package openair reads OpenAIR airspace text into polygon shapes.
//
// OpenAIR carries no stable identifiers, so its shapes only serve as a
// geometry source for ARINC airspaces, joined by normalised name and class
// through an Index. Arcs and circles are expanded to vertices at a fixed
// angular step on a spherical earth.
package openair
