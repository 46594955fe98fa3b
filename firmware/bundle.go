package firmware

import (
	"errors"
	"fmt"
	"sync"
)

// Bundle is the ordered set of images for one session: the boot image
// followed by zero or more application images.
type Bundle struct {
	Boot         *Image
	Applications []*Image
}

// All returns the images in transfer order.
func (b *Bundle) All() []*Image {
	images := make([]*Image, 0, 1+len(b.Applications))
	if b.Boot != nil {
		images = append(images, b.Boot)
	}
	return append(images, b.Applications...)
}

// TotalSize returns the sum of all image sizes.
func (b *Bundle) TotalSize() uint64 {
	var total uint64
	for _, img := range b.All() {
		total += img.Size
	}
	return total
}

// Close closes every image and joins their errors.
func (b *Bundle) Close() error {
	var errs []error
	for _, img := range b.All() {
		if err := img.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// OpenBundle opens the boot image and the application images concurrently.
// Transfer order follows the arguments. If any file fails to open, the ones
// that did open are closed and every failure is reported.
//
// Example:
//
//	b, err := firmware.OpenBundle("boot.bin", []string{"app1.bin", "app2.bin"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer b.Close()
func OpenBundle(boot string, applications []string) (*Bundle, error) {
	if boot == "" {
		return nil, fmt.Errorf("boot image path cannot be empty")
	}

	paths := append([]string{boot}, applications...)
	images := make([]*Image, len(paths))
	errs := make([]error, len(paths))

	var wg sync.WaitGroup
	for i, path := range paths {
		role := RoleApplication
		if i == 0 {
			role = RoleBoot
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			images[i], errs[i] = Open(path, role)
		}()
	}
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		for _, img := range images {
			if img != nil {
				_ = img.Close()
			}
		}
		return nil, err
	}

	return &Bundle{Boot: images[0], Applications: images[1:]}, nil
}
