// Package firmware opens WTP image files and exposes them as length-known
// sequential byte sources.
//
// The downloader never interprets image contents. It needs two things from
// an image: its total length before the transfer starts, and chunks of the
// exact size the device grants, in order.
//
// # Images
//
// Open discovers an image's length by seeking to the end of the file:
//
//	img, err := firmware.Open("TIM.bin", firmware.RoleBoot)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer img.Close()
//
//	chunk, err := img.ReadChunk(4096)
//
// ReadChunk never reads past Size. A file that shrinks after it was opened
// yields a *FileError rather than a short chunk.
//
// FromBytes and NewImage build images from memory or any io.Reader, which is
// how tests and the examples feed the downloader.
//
// # Bundles
//
// A Bundle holds the boot image and the application images in transfer
// order. OpenBundle opens all files concurrently:
//
//	b, err := firmware.OpenBundle("TIM.bin", []string{"OBM.bin", "uboot.bin"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer b.Close()
//
//	for _, img := range b.All() {
//	    fmt.Printf("%-11s %s (%d bytes)\n", img.Role, img.Name, img.Size)
//	}
package firmware
