// Package gallery expands inline `[:gallery: <name>]` markers into a grid of
// thumbnail links. Image lists are read from the gallery index pages an
// external gallery generator has already rendered into the site output.
package gallery
