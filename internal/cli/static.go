package cli

// defaultConfigFileContent is used when no config file was found.
const defaultConfigFileContent = `version: 1
server:
  listen:
    - 0.0.0.0:5053
  reuseport: true
  workers: 100
filter:
  client:
    action: allow
    rules: []
`
