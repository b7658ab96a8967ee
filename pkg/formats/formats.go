// Package formats parses the Ragnarok Online map files used as terrain input.
//
// Only the ground altitude table (GAT) is read. Its per-cell corner heights
// become grid heights; GND meshes and RSW scenes carry no extra terrain
// elevation and are not parsed.
package formats
