/*
Copyright 2026.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package synthesis

import (
	corev1 "k8s.io/api/core/v1"
)

// ConfigFileName is the key holding the rendered configuration file.
const ConfigFileName = "odoo.conf"

// AddonsPath is the directory Odoo scans for extra addon modules.
const AddonsPath = "/mnt/extra-addons"

// odooConf is the configuration template. The $ODOO_* tokens are placeholder
// references resolved by Odoo at container start from its own environment;
// credentials are never baked into the artifact.
const odooConf = `[options]
admin_passwd = $ODOO_ADMIN_PASSWORD
db_host = $ODOO_DB_HOST
db_port = $ODOO_DB_PORT
db_user = $ODOO_DB_USER
db_password = $ODOO_DB_PASSWORD
addons_path = ` + AddonsPath + `
proxy_mode = True
`

// BuildConfig synthesizes the odoo.conf ConfigMap.
func (s *Synthesizer) BuildConfig(owner Owner) *corev1.ConfigMap {
	return &corev1.ConfigMap{
		ObjectMeta: s.objectMeta(owner, ConfigName(owner.Name), "config"),
		Data: map[string]string{
			ConfigFileName: odooConf,
		},
	}
}
