// Package sixface downloads panoramas published as exactly six whole-face
// images. The five sibling URLs are derived from the seed by replacing the
// face symbol just before the file extension:
//
//	http://host/pano_f.jpg -> pano_r.jpg, pano_b.jpg, pano_l.jpg, pano_u.jpg, pano_d.jpg
//	http://host/pano/0.jpg -> 1.jpg ... 5.jpg
//
// The set is fixed and complete, so nothing is probed: a missing face fails
// the download.
package sixface
