// Package stitch turns an acquired cube into images.
//
// Compositor assembles every tiled face into one whole-face image
// (multistitch). Equirect projects six whole faces into a 2:1
// equirectangular panorama in process. Command hands the faces to an
// external tool and reads back the panorama it writes. All projectors take
// the rotation untouched from the conversion.
package stitch
