package testutils

// -------------------------------------------------------------------------------------------------
// Levels
// -------------------------------------------------------------------------------------------------

// LevelYAML is a small but complete level: a ground quad, two static meshes, a four waypoint
// way-network, two vobs and one NPC walking from WP_A to WP_C.
const LevelYAML = `
name: testworld
worldMesh:
  name: testworld
  vertices:
    - {position: [-50, 0, -50], uv: [0, 0]}
    - {position: [50, 0, -50], uv: [1, 0]}
    - {position: [50, 0, 50], uv: [1, 1]}
    - {position: [-50, 0, 50], uv: [0, 1]}
  indices: [0, 1, 2, 0, 2, 3]
  submeshes:
    - {material: ground, startIndex: 0, numIndices: 6}
textures:
  - {name: ground.tga, width: 256, height: 256}
  - {name: wood.tga, width: 64, height: 64}
materials:
  - {name: ground, texture: ground.tga}
  - {name: wood, texture: wood.tga, color: 0xFF8080FF}
  - {name: skin}
staticMeshes:
  - name: CHAIR.3DS
    vertices:
      - {position: [0, 0, 0]}
      - {position: [1, 0, 0]}
      - {position: [1, 1, 0]}
      - {position: [0, 1, 0]}
    indices: [0, 1, 2, 0, 2, 3]
    submeshes:
      - {material: wood, startIndex: 0, numIndices: 3}
      - {material: ground, startIndex: 3, numIndices: 3}
  - name: HUM_BODY_NAKED0.MDM
    vertices:
      - {position: [0, 0, 0]}
      - {position: [0, 2, 0]}
      - {position: [1, 0, 0]}
    indices: [0, 1, 2]
    submeshes:
      - {material: skin, startIndex: 0, numIndices: 3}
waynet:
  waypoints:
    - {name: WP_A, position: [0, 0, 0], direction: [1, 0, 0]}
    - {name: WP_B, position: [10, 0, 0], direction: [0, 0, 1]}
    - {name: WP_C, position: [10, 0, 10], direction: [-1, 0, 0]}
    - {name: WP_D, position: [0, 0, 10], direction: [0, 0, -1]}
  edges:
    - [WP_A, WP_B]
    - [WP_B, WP_C]
    - [WP_C, WP_D]
vobs:
  - {name: chair, visual: CHAIR.3DS, position: [2, 0, 2], bboxMin: [0, 0, 0], bboxMax: [1, 1, 1]}
  - {name: crate, position: [5, 0, 5], bboxMin: [-1, -1, -1], bboxMax: [1, 1, 1], debugColor: 0xFF00FF00}
npcs:
  - {name: Diego, instance: PC_THIEF, visual: HUM_BODY_NAKED0.MDM, waypoint: WP_A, route: [WP_C]}
`

// LevelJSON is a minimal level in JSON form.
const LevelJSON = `{
  "name": "jsonworld",
  "worldMesh": {
    "vertices": [{"position": [0, 0, 0]}, {"position": [1, 0, 0]}, {"position": [0, 0, 1]}],
    "indices": [0, 1, 2],
    "submeshes": [{"material": "ground", "startIndex": 0, "numIndices": 3}]
  },
  "materials": [{"name": "ground"}],
  "waynet": {"waypoints": [{"name": "START", "position": [0, 0, 0]}]}
}`
