package searchindex

import "fmt"

// ProductName is how the server product is named in operator-facing messages.
const ProductName = "Chef Infra Server"

func errReindexSleep(minMS, maxMS int) string {
	return fmt.Sprintf(`
INDEX001: opscode_erchef['reindex_sleep_min_ms'] (%d) is greater than
          opscode_erchef['reindex_sleep_max_ms'] (%d)

          The maximum sleep time should be greater or equal to the minimum sleep
          time.
`, minMS, maxMS)
}

func errSystemMemory(systemMB, requiredMB uint64) string {
	return fmt.Sprintf(`
INDEX003: Insufficient system memory

          System has %d MB of memory,
          but %d MB is required.
`, systemMB, requiredMB)
}

func errSystemMemoryUnknown(err error) string {
	return fmt.Sprintf(`
INDEX003: Could not determine system memory

          %v

          At least %d MB of memory is required.
`, err, RequiredMemoryMB)
}

func errHeapSize(heapMB int) string {
	return fmt.Sprintf(`
INDEX004: Invalid opensearch heap size

              opensearch['heap_size'] is %dMB

          The recommended heap_size is between 1GB and 26GB. Refer to
          https://opensearch.org/docs/latest/opensearch/index/
          for more information.
`, heapMB)
}

func errShouldDisableInternal(configPath string) string {
	return fmt.Sprintf(`
INDEX005: The %s is configured to use an external search
          index but the internal Opensearch is still enabled. This is
          an unsupported configuration.

          To disable the internal Opensearch, add the following to %s:

              opensearch['enable'] = false
`, ProductName, configPath)
}

func errShouldAuth(configPath string) string {
	return fmt.Sprintf(`
INDEX005: The %s is configured to use an 'opensearch' search
          index but no username & password. This is
          an unsupported configuration.

          To use Opensearch, add the following to %s:

              opscode_erchef['search_auth_username'] = OPENSEARCH_USERNAME
              opscode_erchef['search_auth_password'] = OPENSEARCH_PASSWORD
`, ProductName, configPath)
}

func errExternalURL(configPath string) string {
	return fmt.Sprintf(`
INDEX006: No external url specified for Opensearch despite opensearch['external']
          being set to true.

          To use an external Opensearch instance, please set:

              opensearch['external'] = true
              opensearch['external_url'] = YOUR_OPENSEARCH_URL

          in %s
`, configPath)
}

func errQueueMode(configPath string) string {
	return fmt.Sprintf(`
INDEX007: The opensearch provider is only supported by the batch or inline
          queue modes. To use the opensearch provider, please also set:

              opscode_erchef['search_queue_mode'] = 'batch'

          in %s
`, configPath)
}

func warnUnsupportedVersion(version int) string {
	return fmt.Sprintf(`
%s currently supports Opensearch version %d.
The Opensearch you have provided is running version %d.

Please check the release notes at https://docs.chef.io/release_notes_server for details.
`, ProductName, SupportedVersion, version)
}
