package config

// ProjectFile represents the structure of the soup.yaml configuration file.
type ProjectFile struct {
	Version         string `yaml:"version"`
	Graph           string `yaml:"graph"`
	Configuration   string `yaml:"configuration"`
	ObjectDirectory string `yaml:"objectDirectory"`
	Parallelism     int    `yaml:"parallelism"`
	ProcessTimeout  string `yaml:"processTimeout"`
}
