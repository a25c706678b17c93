package cell

import "fmt"

// Naming functions for cell resources.
// Remote objects and local files follow fixed patterns so that delete can
// find everything create left behind.

func (c Cell) KeyPairName() string {
	return c.FullName()
}

func (c Cell) StackName() string {
	return c.Name
}

func (c Cell) KeyFileName() string {
	return c.FullName() + ".pem"
}

// ObjectKey returns the bucket key for path below the cell prefix.
func (c Cell) ObjectKey(path string) string {
	return fmt.Sprintf("%s/%s", c.FullName(), path)
}

func (c Cell) SeedKey() string {
	return c.ObjectKey("shared/cell-os/seed.tar.gz")
}

func (c Cell) UserDataKey() string {
	return c.ObjectKey("shared/cell-os/user-data")
}

func (c Cell) StatusPageKey() string {
	return c.ObjectKey("shared/status/status.html")
}

func (c Cell) VersionBundleKey(version string) string {
	return c.ObjectKey(fmt.Sprintf("shared/cell-os/cell-os-base-%s.yaml", version))
}

func (c Cell) TemplateKey(file string) string {
	return c.ObjectKey(file)
}

func (c Cell) ServerName(role Role, index int) string {
	return fmt.Sprintf("%s-%s-%d", c.Name, role, index)
}

func (c Cell) ProxyHost() string {
	return "proxy-cell-" + c.Name
}

func (c Cell) BastionHost() string {
	return "bastion-cell-" + c.Name
}
